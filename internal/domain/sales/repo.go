package sales

import (
	"context"
	"time"

	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// Filter narrows sale listings.
type Filter struct {
	StaffName  string
	CustomerID *id.ID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// TopProduct is the best-selling product of a summary window.
type TopProduct struct {
	ProductName string `db:"product_name" json:"productName"`
	TotalQty    int    `db:"total_qty" json:"totalQty"`
}

// CashierSummary aggregates one cashier's sales for a single day.
type CashierSummary struct {
	TotalSales         types.Money                 `json:"totalSales"`
	TopProduct         *TopProduct                 `json:"topProduct,omitempty"`
	PaymentTypeAmounts map[PaymentType]types.Money `json:"paymentTypeAmounts"`
}

// Repository persists sales, sale items and receipts.
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error
	CreateItem(ctx context.Context, item *SaleItem) error

	// UpdateSaleTotals writes the totals computed during commit.
	UpdateSaleTotals(ctx context.Context, s *Sale) error

	GetSale(ctx context.Context, saleID id.ID) (*Sale, error)
	List(ctx context.Context, f Filter) ([]*Sale, error)
	ReferenceExists(ctx context.Context, ref string) (bool, error)

	// GetOrCreateReceipt returns the sale's receipt, creating an empty one
	// when none exists yet. Re-committing a sale never duplicates it.
	GetOrCreateReceipt(ctx context.Context, saleID id.ID) (*Receipt, error)
	UpdateReceipt(ctx context.Context, r *Receipt) error
	ListReceiptsByDay(ctx context.Context, day time.Time, limit int) ([]*Receipt, error)

	// CashierSummary aggregates the staff member's items for one day.
	CashierSummary(ctx context.Context, staffName string, day time.Time) (*CashierSummary, error)
}
