package sales

import (
	"context"
	"time"

	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/pool"
	"swiftpos/internal/domain/stock"
)

// ReceiptLine is one printed row on a receipt.
type ReceiptLine struct {
	Description string
	Quantity    int
	UnitPrice   types.Money
	Amount      types.Money
}

// ReceiptData is the flat view handed to the renderer.
type ReceiptData struct {
	ReceiptNumber string
	CashierName   string
	DateTime      time.Time
	CustomerName  string
	CustomerPhone string
	Items         []ReceiptLine
	Subtotal      types.Money
	Discount      types.Money
	VAT           types.Money
	GrandTotal    types.Money
	Reference     string
}

// Renderer turns receipt data into a printable document.
type Renderer interface {
	Render(ctx context.Context, data ReceiptData) ([]byte, error)
}

// FileStore persists rendered receipt files and returns a URL the frontend
// can open.
type FileStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// StockLedger is the slice of the stock service the commit workflow uses.
type StockLedger interface {
	RecordMovement(ctx context.Context, productID id.ID, action stock.Action, quantity int, notes string) error
	DrainFIFO(ctx context.Context, productID id.ID, quantity int) error
}

// PoolDrainer deducts sold units from a locked pool entry, deleting it when
// it reaches exactly zero.
type PoolDrainer interface {
	Deduct(ctx context.Context, entry *pool.Entry, quantity int) error
}
