package reports

import (
	"context"
	"time"

	"swiftpos/internal/core/types"
)

// Repository runs the aggregate queries behind the dashboards. All methods
// are read-only.
type Repository interface {
	MonthlySales(ctx context.Context, year int, month time.Month) (*MonthlySales, error)
	AllTimeProfit(ctx context.Context) (types.Money, error)

	// ProductPerformance aggregates sale items per product over all time.
	ProductPerformance(ctx context.Context) ([]*ProductPerformance, error)

	InventoryTotals(ctx context.Context) (*InventoryTotals, error)
	LowStock(ctx context.Context) ([]*StockLevel, error)
	OutOfStock(ctx context.Context) ([]*StockLevel, error)

	// MonthlyLosses sums loss values from write-offs and both resale pools
	// for one calendar month.
	MonthlyLosses(ctx context.Context, year int, month time.Month) (*LossBreakdown, error)
}
