package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/overhead"
)

// trendMonths is the window of the dashboard trend charts.
const trendMonths = 6

// performanceLimit caps the top and worst product lists.
const performanceLimit = 10

// OverheadCalculator is the slice of the overhead service the dashboard
// needs for net profit math.
type OverheadCalculator interface {
	CalculateTotals(ctx context.Context) (*overhead.Totals, error)
	RecurringShareFor(ctx context.Context, year int, month time.Month) (types.Money, error)
}

// Service assembles the dashboard payloads.
type Service struct {
	repo      Repository
	overheads OverheadCalculator

	now func() time.Time
}

// NewService creates a reports service.
func NewService(repo Repository, overheads OverheadCalculator) *Service {
	return &Service{repo: repo, overheads: overheads, now: time.Now}
}

// Dashboard builds the management summary: current and previous month
// figures net of recurring overheads, all-time profit net of every
// overhead, product rankings and six months of trends.
func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	now := s.now().UTC()
	curYear, curMonth := now.Year(), now.Month()
	prevYear, prevMonth := previousMonth(curYear, curMonth)

	totals, err := s.overheads.CalculateTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("overhead totals: %w", err)
	}

	current, err := s.repo.MonthlySales(ctx, curYear, curMonth)
	if err != nil {
		return nil, err
	}
	previous, err := s.repo.MonthlySales(ctx, prevYear, prevMonth)
	if err != nil {
		return nil, err
	}

	allTimeProfit, err := s.repo.AllTimeProfit(ctx)
	if err != nil {
		return nil, err
	}

	performance, err := s.repo.ProductPerformance(ctx)
	if err != nil {
		return nil, err
	}
	top, worst := rankProducts(performance)

	summary := &DashboardSummary{
		DiscountCurrentMonth:   current.TotalDiscount,
		DiscountPreviousMonth:  previous.TotalDiscount,
		ProfitCurrentMonth:     current.TotalProfit.Sub(totals.RecurringCurrentMonth),
		ProfitPreviousMonth:    previous.TotalProfit.Sub(totals.RecurringPrevMonth),
		ProfitAllTime:          allTimeProfit.Sub(totals.GrandTotal),
		TopProducts:            top,
		WorstProducts:          worst,
		TotalSaleCurrentMonth:  current.TotalAmount,
		TotalSalePreviousMonth: previous.TotalAmount,
		TotalUnitSoldCurrent:   current.ItemsSold,
		TotalUnitSoldPrev:      previous.ItemsSold,
	}

	if err := s.fillTrends(ctx, summary, curYear, curMonth); err != nil {
		return nil, err
	}
	return summary, nil
}

// fillTrends walks the last trendMonths months oldest first.
func (s *Service) fillTrends(ctx context.Context, summary *DashboardSummary, curYear int, curMonth time.Month) error {
	for i := trendMonths - 1; i >= 0; i-- {
		year, month := monthsBack(curYear, curMonth, i)

		sales, err := s.repo.MonthlySales(ctx, year, month)
		if err != nil {
			return err
		}
		overheadShare, err := s.overheads.RecurringShareFor(ctx, year, month)
		if err != nil {
			return err
		}

		summary.TrendLabels = append(summary.TrendLabels,
			fmt.Sprintf("%s %02d", month.String(), year%100))
		summary.DiscountTrend = append(summary.DiscountTrend, sales.TotalDiscount)
		summary.ProfitTrend = append(summary.ProfitTrend, sales.TotalProfit.Sub(overheadShare))
		summary.OverheadTrend = append(summary.OverheadTrend, types.RoundCents(overheadShare))
		summary.SalesCountTrend = append(summary.SalesCountTrend, sales.SalesCount)
		summary.ItemsSoldTrend = append(summary.ItemsSoldTrend, sales.ItemsSold)
	}
	return nil
}

// Inventory builds the stock health screen: valuation, low and out of
// stock lists, the month's turnover rate and loss breakdown.
func (s *Service) Inventory(ctx context.Context) (*InventoryDashboard, error) {
	now := s.now().UTC()

	totals, err := s.repo.InventoryTotals(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.OutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	losses, err := s.repo.MonthlyLosses(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.MonthlySales(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	return &InventoryDashboard{
		ProductTotalValue: totals.RetailValue,
		TotalProducts:     totals.TotalProducts,
		TotalInStock:      totals.TotalInStock,
		LowStock:          low,
		OutOfStock:        out,
		MonthlyTurnover:   turnoverRate(sales.TotalAmount, totals.CostValue),
		MonthlyLosses:     losses,
	}, nil
}

// turnoverRate approximates inventory turnover: sales against the average
// of opening and closing inventory at cost, floored at 1 to avoid division
// blowups on tiny inventories.
func turnoverRate(monthlySales, closingInventory types.Money) float64 {
	opening := closingInventory.Sub(monthlySales)
	average := opening.Add(closingInventory).Div(types.MoneyFromInt(2))
	if average.LessThan(types.MoneyFromInt(1)) {
		average = types.MoneyFromInt(1)
	}
	rate, _ := monthlySales.Div(average).Round(2).Float64()
	return rate
}

// rankProducts sorts by quantity sold and slices both ends of the ranking.
func rankProducts(performance []*ProductPerformance) (top, worst []*ProductPerformance) {
	byQty := make([]*ProductPerformance, len(performance))
	copy(byQty, performance)
	sort.SliceStable(byQty, func(i, j int) bool {
		return byQty[i].QuantitySold > byQty[j].QuantitySold
	})

	limit := performanceLimit
	if limit > len(byQty) {
		limit = len(byQty)
	}
	top = byQty[:limit]

	worst = make([]*ProductPerformance, len(byQty))
	copy(worst, byQty)
	for i, j := 0, len(worst)-1; i < j; i, j = i+1, j-1 {
		worst[i], worst[j] = worst[j], worst[i]
	}
	worst = worst[:limit]
	return top, worst
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// monthsBack steps i months back from the given month.
func monthsBack(year int, month time.Month, i int) (int, time.Month) {
	m := int(month) - i
	for m <= 0 {
		m += 12
		year--
	}
	return year, time.Month(m)
}
