// Package sales implements the sale transaction workflow: cart validation,
// the atomic commit that deducts stock across the product table, the resale
// pools and the expiry batches, and receipt generation.
package sales

import (
	"time"

	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// PaymentType is how the customer paid.
type PaymentType string

const (
	PaymentCash     PaymentType = "Cash"
	PaymentCard     PaymentType = "Card"
	PaymentTransfer PaymentType = "Transfer"
)

// IsValid reports whether p is a known payment type.
func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// SaleType tags which inventory pool a sale line draws from.
type SaleType string

const (
	// SaleTypeOrdinary draws from regular product stock.
	SaleTypeOrdinary SaleType = "sales"
	// SaleTypeDamaged draws from the damaged resale pool.
	SaleTypeDamaged SaleType = "damaged"
	// SaleTypeExpiring draws from the expiring resale pool.
	SaleTypeExpiring SaleType = "expiring"
)

// IsValid reports whether t is a known sale type.
func (t SaleType) IsValid() bool {
	switch t {
	case SaleTypeOrdinary, SaleTypeDamaged, SaleTypeExpiring:
		return true
	}
	return false
}

// HistoryLabel is the wording used in stock history notes.
func (t SaleType) HistoryLabel() string {
	switch t {
	case SaleTypeDamaged:
		return "Damaged"
	case SaleTypeExpiring:
		return "Expiring"
	default:
		return "Sales"
	}
}

// Sale is one committed transaction. Totals are write-once at commit.
type Sale struct {
	ID         id.ID       `db:"id" json:"id"`
	Reference  string      `db:"reference" json:"reference"`
	CustomerID *id.ID      `db:"customer_id" json:"customerId,omitempty"`
	StaffName  string      `db:"staff_name" json:"staffName"`
	Payment    PaymentType `db:"payment_type" json:"paymentType"`

	TotalCost     types.Money `db:"total_cost" json:"totalCost"`
	TotalAmount   types.Money `db:"total_amount" json:"totalAmount"`
	TotalVAT      types.Money `db:"total_vat" json:"totalVat"`
	TotalDiscount types.Money `db:"total_discount" json:"totalDiscount"`
	TotalProfit   types.Money `db:"total_profit" json:"totalProfit"`

	SaleDate time.Time `db:"sale_date" json:"saleDate"`

	Items []*SaleItem `db:"-" json:"items,omitempty"`
}

// SaleItem is one line within a sale. Cost and profit are computed once at
// commit from the product's buying price and never re-derived.
type SaleItem struct {
	ID        id.ID `db:"id" json:"id"`
	SaleID    id.ID `db:"sale_id" json:"saleId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	Quantity int      `db:"quantity" json:"quantity"`
	Type     SaleType `db:"sale_type" json:"saleType"`

	UnitPrice     types.Money `db:"unit_price" json:"unitPrice"`
	CostPrice     types.Money `db:"cost_price" json:"costPrice"`
	VATValue      types.Money `db:"vat_value" json:"vatValue"`
	DiscountValue types.Money `db:"discount_value" json:"discountValue"`

	// Amount is the stored line total: raw amount plus VAT minus discount.
	Amount types.Money `db:"amount" json:"amount"`
	Profit types.Money `db:"profit" json:"profit"`
}

// Receipt is the printable artifact generated for a sale, created once and
// immutable afterwards except for late customer backfill.
type Receipt struct {
	ID             id.ID      `db:"id" json:"id"`
	SaleID         id.ID      `db:"sale_id" json:"saleId"`
	CustomerID     *id.ID     `db:"customer_id" json:"customerId,omitempty"`
	FilePath       string     `db:"file_path" json:"filePath"`
	SalesReference string     `db:"sales_reference" json:"salesReference"`
	ReceiptNumber  string     `db:"receipt_number" json:"receiptNumber"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}
