// Package supplier provides the supplier catalog and supply records.
package supplier

import (
	"context"
	"time"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// Status marks whether a supplier is still in use.
type Status string

const (
	StatusActive       Status = "active"
	StatusDiscontinued Status = "discontinue"
)

// Badge ranks suppliers by supplied volume.
type Badge string

const (
	BadgeTop    Badge = "Top Supplier"
	BadgeNormal Badge = "Normal Supplier"
	BadgeLow    Badge = "Low Supplier"
)

// Supplier represents a goods supplier.
type Supplier struct {
	entity.Catalog

	Address       *string `db:"address" json:"address,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Email         *string `db:"email" json:"email,omitempty"`
	BankName      *string `db:"bank_name" json:"bankName,omitempty"`
	AccountNumber *string `db:"account_number" json:"accountNumber,omitempty"`

	// Badge is recomputed from supply volume, not set by callers
	Badge  Badge  `db:"badge" json:"badge"`
	Status Status `db:"status" json:"status"`

	CreatedByName string `db:"created_by_name" json:"createdByName,omitempty"`
	UpdatedByName string `db:"updated_by_name" json:"updatedByName,omitempty"`
}

// New creates a new Supplier.
func New(name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(name),
		Badge:   BadgeNormal,
		Status:  StatusActive,
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if s.Status != StatusActive && s.Status != StatusDiscontinued {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(s.Status))
	}
	return nil
}

// Supply records the cumulative quantity a supplier has delivered of one product.
// One row per (supplier, product) pair, updated on each restock.
type Supply struct {
	ID               id.ID       `db:"id" json:"id"`
	SupplierID       id.ID       `db:"supplier_id" json:"supplierId"`
	ProductID        id.ID       `db:"product_id" json:"productId"`
	QuantitySupplied int         `db:"quantity_supplied" json:"quantitySupplied"`
	UnitPrice        types.Money `db:"unit_price" json:"unitPrice"`
	TotalAmount      types.Money `db:"total_amount" json:"totalAmount"`
	SupplyDate       time.Time   `db:"supply_date" json:"supplyDate"`
}

// NewSupply creates a supply record for the first delivery of a product.
func NewSupply(supplierID, productID id.ID, quantity int, unitPrice types.Money) *Supply {
	s := &Supply{
		ID:               id.New(),
		SupplierID:       supplierID,
		ProductID:        productID,
		QuantitySupplied: quantity,
		UnitPrice:        unitPrice,
		SupplyDate:       time.Now().UTC(),
	}
	s.RecalcTotal()
	return s
}

// RecalcTotal recomputes the cumulative amount from price and quantity.
func (s *Supply) RecalcTotal() {
	s.TotalAmount = s.UnitPrice.Mul(types.MoneyFromInt(int64(s.QuantitySupplied)))
}

// AddDelivery accumulates a restock into the supply record.
// The unit price is replaced with the latest delivery price.
func (s *Supply) AddDelivery(quantity int, unitPrice types.Money) {
	s.QuantitySupplied += quantity
	s.UnitPrice = unitPrice
	s.RecalcTotal()
}
