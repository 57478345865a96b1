// Package report_repo runs the aggregate queries behind the dashboards.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/reports"
	"swiftpos/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func monthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// MonthlySales aggregates all sales landing in one calendar month.
func (r *ReportRepo) MonthlySales(ctx context.Context, year int, month time.Month) (*reports.MonthlySales, error) {
	start, end := monthWindow(year, month)
	querier := r.txManager.GetQuerier(ctx)

	headerQ := r.builder.
		Select(
			"COALESCE(SUM(total_discount), 0) AS total_discount",
			"COALESCE(SUM(total_profit), 0) AS total_profit",
			"COALESCE(SUM(total_amount), 0) AS total_amount",
			"COUNT(*)::int AS sales_count",
		).
		From("doc_sales").
		Where(squirrel.GtOrEq{"sale_date": start}).
		Where(squirrel.Lt{"sale_date": end})

	sql, args, err := headerQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m reports.MonthlySales
	if err := pgxscan.Get(ctx, querier, &m, sql, args...); err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}

	itemsQ := r.builder.
		Select("COALESCE(SUM(i.quantity), 0)::int").
		From("doc_sale_items i").
		Join("doc_sales s ON s.id = i.sale_id").
		Where(squirrel.GtOrEq{"s.sale_date": start}).
		Where(squirrel.Lt{"s.sale_date": end})

	itemsSQL, itemsArgs, err := itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	if err := querier.QueryRow(ctx, itemsSQL, itemsArgs...).Scan(&m.ItemsSold); err != nil {
		return nil, fmt.Errorf("monthly items sold: %w", err)
	}

	return &m, nil
}

// AllTimeProfit sums profit over every sale.
func (r *ReportRepo) AllTimeProfit(ctx context.Context) (types.Money, error) {
	q := r.builder.
		Select("COALESCE(SUM(total_profit), 0)").
		From("doc_sales")

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var total types.Money
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("all-time profit: %w", err)
	}
	return total, nil
}

// ProductPerformance aggregates sale items per product over all time.
func (r *ReportRepo) ProductPerformance(ctx context.Context) ([]*reports.ProductPerformance, error) {
	q := r.builder.
		Select(
			"i.product_id",
			"p.name AS product_name",
			"COALESCE(SUM(i.quantity), 0)::int AS quantity_sold",
			"COALESCE(SUM(i.vat_value * i.quantity), 0) AS total_vat",
			"COALESCE(SUM(i.discount_value), 0) AS total_discount",
			"COALESCE(SUM(i.amount), 0) AS total_amount",
			"COALESCE(SUM(i.profit), 0) AS total_profit",
		).
		From("doc_sale_items i").
		Join("cat_products p ON p.id = i.product_id").
		GroupBy("i.product_id", "p.name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var perf []*reports.ProductPerformance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &perf, sql, args...); err != nil {
		return nil, fmt.Errorf("product performance: %w", err)
	}

	return perf, nil
}

// InventoryTotals computes the valuation snapshot of the whole catalog.
func (r *ReportRepo) InventoryTotals(ctx context.Context) (*reports.InventoryTotals, error) {
	q := r.builder.
		Select(
			"COALESCE(SUM(quantity * (unit_price + CASE WHEN apply_vat THEN vat_value ELSE 0 END)), 0) AS retail_value",
			"COALESCE(SUM(quantity * unit_buying_price), 0) AS cost_value",
			"COUNT(*)::int AS total_products",
			"COALESCE(SUM(quantity), 0)::int AS total_in_stock",
		).
		From("cat_products")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var totals reports.InventoryTotals
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &totals, sql, args...); err != nil {
		return nil, fmt.Errorf("inventory totals: %w", err)
	}

	return &totals, nil
}

func (r *ReportRepo) stockLevels(ctx context.Context, cond squirrel.Sqlizer) ([]*reports.StockLevel, error) {
	q := r.builder.
		Select(
			"id AS product_id",
			"name",
			"quantity",
			"min_stock_threshold",
		).
		From("cat_products").
		Where(cond).
		OrderBy("quantity ASC", "name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var levels []*reports.StockLevel
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &levels, sql, args...); err != nil {
		return nil, fmt.Errorf("stock levels: %w", err)
	}

	return levels, nil
}

// LowStock lists products at or below their minimum threshold but not empty.
func (r *ReportRepo) LowStock(ctx context.Context) ([]*reports.StockLevel, error) {
	return r.stockLevels(ctx, squirrel.And{
		squirrel.Expr("quantity <= min_stock_threshold"),
		squirrel.Gt{"quantity": 0},
	})
}

// OutOfStock lists products with nothing left.
func (r *ReportRepo) OutOfStock(ctx context.Context) ([]*reports.StockLevel, error) {
	return r.stockLevels(ctx, squirrel.Eq{"quantity": 0})
}

// MonthlyLosses sums loss values from write-offs and both resale pools for
// one calendar month.
func (r *ReportRepo) MonthlyLosses(ctx context.Context, year int, month time.Month) (*reports.LossBreakdown, error) {
	start, end := monthWindow(year, month)
	querier := r.txManager.GetQuerier(ctx)

	sumOver := func(table, valueCol, dateCol string, extra squirrel.Sqlizer) (types.Money, error) {
		q := r.builder.
			Select("COALESCE(SUM(" + valueCol + "), 0)").
			From(table).
			Where(squirrel.GtOrEq{dateCol: start}).
			Where(squirrel.Lt{dateCol: end})
		if extra != nil {
			q = q.Where(extra)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return types.Zero(), fmt.Errorf("build query: %w", err)
		}

		var total types.Money
		if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
			return types.Zero(), fmt.Errorf("sum %s: %w", table, err)
		}
		return total, nil
	}

	writeOff, err := sumOver("doc_write_offs", "loss_value", "date", nil)
	if err != nil {
		return nil, err
	}
	expiring, err := sumOver("reg_pool_entries", "loss_value", "created_at", squirrel.Eq{"kind": "expiring"})
	if err != nil {
		return nil, err
	}
	damaged, err := sumOver("reg_pool_entries", "loss_value", "created_at", squirrel.Eq{"kind": "damaged"})
	if err != nil {
		return nil, err
	}

	return &reports.LossBreakdown{
		WriteOff: writeOff,
		Expiring: expiring,
		Damaged:  damaged,
		Total:    writeOff.Add(expiring).Add(damaged),
	}, nil
}
