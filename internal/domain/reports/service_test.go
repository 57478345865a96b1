package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/overhead"
)

type stubRepo struct {
	Repository
	monthly map[string]*MonthlySales
	allTime types.Money
	perf    []*ProductPerformance
}

func key(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (r *stubRepo) MonthlySales(_ context.Context, year int, month time.Month) (*MonthlySales, error) {
	if m, ok := r.monthly[key(year, month)]; ok {
		return m, nil
	}
	return &MonthlySales{
		TotalDiscount: types.Zero(),
		TotalProfit:   types.Zero(),
		TotalAmount:   types.Zero(),
	}, nil
}

func (r *stubRepo) AllTimeProfit(context.Context) (types.Money, error) {
	return r.allTime, nil
}

func (r *stubRepo) ProductPerformance(context.Context) ([]*ProductPerformance, error) {
	return r.perf, nil
}

type stubOverheads struct {
	totals *overhead.Totals
	shares map[string]types.Money
}

func (s *stubOverheads) CalculateTotals(context.Context) (*overhead.Totals, error) {
	return s.totals, nil
}

func (s *stubOverheads) RecurringShareFor(_ context.Context, year int, month time.Month) (types.Money, error) {
	if share, ok := s.shares[key(year, month)]; ok {
		return share, nil
	}
	return types.Zero(), nil
}

func perf(name string, qty int) *ProductPerformance {
	return &ProductPerformance{
		ProductID:    id.New(),
		ProductName:  name,
		QuantitySold: qty,
	}
}

func TestDashboard_NetsProfitAgainstOverheads(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	repo := &stubRepo{
		monthly: map[string]*MonthlySales{
			key(2026, time.August): {
				TotalDiscount: types.MustMoney("50.00"),
				TotalProfit:   types.MustMoney("1000.00"),
				TotalAmount:   types.MustMoney("5000.00"),
				SalesCount:    20,
				ItemsSold:     80,
			},
			key(2026, time.July): {
				TotalDiscount: types.MustMoney("30.00"),
				TotalProfit:   types.MustMoney("800.00"),
				TotalAmount:   types.MustMoney("4000.00"),
				SalesCount:    15,
				ItemsSold:     60,
			},
		},
		allTime: types.MustMoney("9000.00"),
	}
	overheads := &stubOverheads{
		totals: &overhead.Totals{
			CapitalTotal:          types.MustMoney("2000.00"),
			RecurringPrevMonth:    types.MustMoney("100.00"),
			RecurringCurrentMonth: types.MustMoney("150.00"),
			GrandTotal:            types.MustMoney("3000.00"),
		},
		shares: map[string]types.Money{
			key(2026, time.August): types.MustMoney("150.00"),
		},
	}

	svc := NewService(repo, overheads)
	svc.now = func() time.Time { return now }

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.ProfitCurrentMonth.Equal(types.MustMoney("850.00")))
	assert.True(t, summary.ProfitPreviousMonth.Equal(types.MustMoney("700.00")))
	assert.True(t, summary.ProfitAllTime.Equal(types.MustMoney("6000.00")))
	assert.True(t, summary.DiscountCurrentMonth.Equal(types.MustMoney("50.00")))
	assert.Equal(t, 80, summary.TotalUnitSoldCurrent)
	assert.Equal(t, 60, summary.TotalUnitSoldPrev)
}

func TestDashboard_TrendWindowIsSixMonthsOldestFirst(t *testing.T) {
	repo := &stubRepo{monthly: map[string]*MonthlySales{}}
	overheads := &stubOverheads{totals: &overhead.Totals{
		CapitalTotal:          types.Zero(),
		RecurringPrevMonth:    types.Zero(),
		RecurringCurrentMonth: types.Zero(),
		GrandTotal:            types.Zero(),
	}}

	svc := NewService(repo, overheads)
	svc.now = func() time.Time {
		return time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	}

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	// window wraps into the previous year
	assert.Equal(t, []string{
		"September 25", "October 25", "November 25",
		"December 25", "January 26", "February 26",
	}, summary.TrendLabels)
	assert.Len(t, summary.ProfitTrend, 6)
	assert.Len(t, summary.SalesCountTrend, 6)
}

func TestRankProducts(t *testing.T) {
	performance := []*ProductPerformance{
		perf("rice", 5), perf("oil", 50), perf("soap", 20),
	}

	top, worst := rankProducts(performance)

	require.Len(t, top, 3)
	assert.Equal(t, "oil", top[0].ProductName)
	assert.Equal(t, "rice", worst[0].ProductName)
}

func TestTurnoverRate(t *testing.T) {
	// sales 1000, closing 4000: opening 3000, average 3500
	rate := turnoverRate(types.MustMoney("1000.00"), types.MustMoney("4000.00"))
	assert.InDelta(t, 0.29, rate, 0.001)

	// empty inventory floors the average at 1
	rate = turnoverRate(types.MustMoney("100.00"), types.Zero())
	assert.Greater(t, rate, 1.0)
}
