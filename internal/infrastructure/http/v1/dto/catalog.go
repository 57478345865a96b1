package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// NameRequest creates or renames a simple reference entry (category, unit).
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProductIntakeRequest creates a product or restocks it by code.
type ProductIntakeRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`

	CategoryID *string `json:"categoryId"`
	UnitID     string  `json:"unitId" binding:"required"`

	Quantity          int `json:"quantity"`
	MinStockThreshold int `json:"minStockThreshold"`

	UnitBuyingPrice  decimal.Decimal  `json:"unitBuyingPrice"`
	MarkupPercentage *decimal.Decimal `json:"markupPercentage"`
	UnitPrice        decimal.Decimal  `json:"unitPrice"`

	Discount           decimal.Decimal  `json:"discount"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
	DiscountQuantity   int              `json:"discountQuantity"`

	MeasurementValue *decimal.Decimal `json:"measurementValue"`
	MeasurementUnit  string           `json:"measurementUnit"`

	ExpiryDate             *time.Time `json:"expiryDate"`
	ExpiryMinThresholdDays *int       `json:"expiryMinThresholdDays"`

	ApplyVAT bool            `json:"applyVat"`
	VATValue decimal.Decimal `json:"vatValue"`

	ImageURL *string `json:"imageUrl"`

	// SupplierID links the delivery to a supplier when known
	SupplierID *string `json:"supplierId"`
	Note       string  `json:"note"`
}

// CustomerRequest creates or updates a customer.
type CustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Status  string  `json:"status"`
}

// SupplierRequest creates or updates a supplier.
type SupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	BankName      *string `json:"bankName"`
	AccountNumber *string `json:"accountNumber"`
	Status        string  `json:"status"`
}

// RecordSupplyRequest accumulates a delivery into a supplier's supply record.
type RecordSupplyRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
