// Package reports builds the read-only analytics views: the management
// dashboard, the revenue trends and the inventory health screen.
package reports

import (
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// MonthlySales aggregates all sales landing in one calendar month.
type MonthlySales struct {
	TotalDiscount types.Money `db:"total_discount" json:"totalDiscount"`
	TotalProfit   types.Money `db:"total_profit" json:"totalProfit"`
	TotalAmount   types.Money `db:"total_amount" json:"totalAmount"`
	SalesCount    int         `db:"sales_count" json:"salesCount"`
	ItemsSold     int         `db:"items_sold" json:"itemsSold"`
}

// ProductPerformance aggregates sale items per product over all time.
type ProductPerformance struct {
	ProductID     id.ID       `db:"product_id" json:"productId"`
	ProductName   string      `db:"product_name" json:"productName"`
	QuantitySold  int         `db:"quantity_sold" json:"quantitySold"`
	TotalVAT      types.Money `db:"total_vat" json:"totalVat"`
	TotalDiscount types.Money `db:"total_discount" json:"totalDiscount"`
	TotalAmount   types.Money `db:"total_amount" json:"totalAmount"`
	TotalProfit   types.Money `db:"total_profit" json:"totalProfit"`
}

// StockLevel is a product's stock position on the inventory screen.
type StockLevel struct {
	ProductID         id.ID  `db:"product_id" json:"id"`
	Name              string `db:"name" json:"name"`
	Quantity          int    `db:"quantity" json:"quantity"`
	MinStockThreshold int    `db:"min_stock_threshold" json:"minStockThreshold"`
}

// InventoryTotals is the valuation snapshot of the whole catalog.
type InventoryTotals struct {
	// RetailValue is quantity x VAT-applied selling price over all products.
	RetailValue types.Money `db:"retail_value" json:"productTotalValue"`
	// CostValue is quantity x buying price, used for turnover math.
	CostValue     types.Money `db:"cost_value" json:"-"`
	TotalProducts int         `db:"total_products" json:"totalProduct"`
	TotalInStock  int         `db:"total_in_stock" json:"totalInStock"`
}

// LossBreakdown splits one month's inventory losses by source.
type LossBreakdown struct {
	WriteOff types.Money `json:"writeOffLoss"`
	Expiring types.Money `json:"expiringLoss"`
	Damaged  types.Money `json:"damagedLoss"`
	Total    types.Money `json:"totalLosses"`
}

// DashboardSummary is the management dashboard payload.
type DashboardSummary struct {
	DiscountCurrentMonth  types.Money `json:"discountCurrentMonth"`
	DiscountPreviousMonth types.Money `json:"discountPreviousMonth"`

	// Profit figures are net of recurring overhead shares; all-time profit
	// is net of every overhead ever recorded.
	ProfitCurrentMonth  types.Money `json:"profitCurrentMonth"`
	ProfitPreviousMonth types.Money `json:"profitPreviousMonth"`
	ProfitAllTime       types.Money `json:"profitAllTime"`

	TopProducts   []*ProductPerformance `json:"topProducts"`
	WorstProducts []*ProductPerformance `json:"worstProducts"`

	TrendLabels     []string      `json:"trendLabels"`
	DiscountTrend   []types.Money `json:"discountTrend"`
	ProfitTrend     []types.Money `json:"profitTrend"`
	OverheadTrend   []types.Money `json:"overheadTrend"`
	SalesCountTrend []int         `json:"salesCountTrend"`
	ItemsSoldTrend  []int         `json:"itemsSoldTrend"`

	TotalSaleCurrentMonth  types.Money `json:"totalSaleCurrentMonth"`
	TotalSalePreviousMonth types.Money `json:"totalSalePreviousMonth"`
	TotalUnitSoldCurrent   int         `json:"totalUnitSoldCurrent"`
	TotalUnitSoldPrev      int         `json:"totalUnitSoldPrev"`
}

// InventoryDashboard is the stock health payload.
type InventoryDashboard struct {
	ProductTotalValue types.Money     `json:"productTotalValue"`
	TotalProducts     int             `json:"totalProduct"`
	TotalInStock      int             `json:"totalInStock"`
	LowStock          []*StockLevel   `json:"lowStockProducts"`
	OutOfStock        []*StockLevel   `json:"outOfStockProducts"`
	MonthlyTurnover   float64         `json:"monthlyTurnover"`
	MonthlyLosses     *LossBreakdown  `json:"monthlyLosses"`
}
