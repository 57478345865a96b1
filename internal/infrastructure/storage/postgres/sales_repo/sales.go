// Package sales_repo provides the PostgreSQL implementation of the sales
// repository: sales, sale items and receipts.
package sales_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/sales"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const (
	salesTable    = "doc_sales"
	itemsTable    = "doc_sale_items"
	receiptsTable = "doc_receipts"
)

var saleColumns = []string{
	"id", "reference", "customer_id", "staff_name", "payment_type",
	"total_cost", "total_amount", "total_vat", "total_discount", "total_profit",
	"sale_date",
}

var itemColumns = []string{
	"id", "sale_id", "product_id", "quantity", "sale_type",
	"unit_price", "cost_price", "vat_value", "discount_value",
	"amount", "profit",
}

var receiptColumns = []string{
	"id", "sale_id", "customer_id", "file_path",
	"sales_reference", "receipt_number", "created_at",
}

// SalesRepo implements sales.Repository.
type SalesRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSalesRepo creates a new sales repository.
func NewSalesRepo(txManager *postgres.TxManager) *SalesRepo {
	return &SalesRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateSale inserts a sale header.
func (r *SalesRepo) CreateSale(ctx context.Context, s *sales.Sale) error {
	q := r.builder.
		Insert(salesTable).
		Columns(saleColumns...).
		Values(
			s.ID, s.Reference, s.CustomerID, s.StaffName, s.Payment,
			s.TotalCost, s.TotalAmount, s.TotalVAT, s.TotalDiscount, s.TotalProfit,
			s.SaleDate,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem inserts a sale item.
func (r *SalesRepo) CreateItem(ctx context.Context, item *sales.SaleItem) error {
	q := r.builder.
		Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			item.ID, item.SaleID, item.ProductID, item.Quantity, item.Type,
			item.UnitPrice, item.CostPrice, item.VATValue, item.DiscountValue,
			item.Amount, item.Profit,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// UpdateSaleTotals writes the totals computed during commit.
func (r *SalesRepo) UpdateSaleTotals(ctx context.Context, s *sales.Sale) error {
	q := r.builder.
		Update(salesTable).
		Set("total_cost", s.TotalCost).
		Set("total_amount", s.TotalAmount).
		Set("total_vat", s.TotalVAT).
		Set("total_discount", s.TotalDiscount).
		Set("total_profit", s.TotalProfit).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", s.ID.String())
	}
	return nil
}

// GetSale retrieves a sale with its items.
func (r *SalesRepo) GetSale(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	var s sales.Sale

	q := r.builder.
		Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	itemsQ := r.builder.
		Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"sale_id": saleID})

	itemsSQL, itemsArgs, err := itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &s.Items, itemsSQL, itemsArgs...); err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}

	return &s, nil
}

// List retrieves sale headers, newest first.
func (r *SalesRepo) List(ctx context.Context, f sales.Filter) ([]*sales.Sale, error) {
	q := r.builder.
		Select(saleColumns...).
		From(salesTable).
		OrderBy("sale_date DESC")

	if f.StaffName != "" {
		q = q.Where(squirrel.Eq{"staff_name": f.StaffName})
	}
	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"sale_date": *f.To})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []*sales.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return result, nil
}

// ReferenceExists checks a candidate reference for uniqueness.
func (r *SalesRepo) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	q := r.builder.
		Select("1").
		From(salesTable).
		Where(squirrel.Eq{"reference": ref}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var one int
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reference exists: %w", err)
	}
	return true, nil
}

// GetOrCreateReceipt returns the sale's receipt, inserting an empty row when
// none exists yet. The unique index on sale_id makes re-commits idempotent.
func (r *SalesRepo) GetOrCreateReceipt(ctx context.Context, saleID id.ID) (*sales.Receipt, error) {
	insertQ := r.builder.
		Insert(receiptsTable).
		Columns("id", "sale_id", "created_at").
		Values(id.New(), saleID, time.Now()).
		Suffix("ON CONFLICT (sale_id) DO NOTHING")

	insertSQL, insertArgs, err := insertQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, insertSQL, insertArgs...); err != nil {
		return nil, fmt.Errorf("insert receipt: %w", err)
	}

	var receipt sales.Receipt
	selectQ := r.builder.
		Select(receiptColumns...).
		From(receiptsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		Limit(1)

	selectSQL, selectArgs, err := selectQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, querier, &receipt, selectSQL, selectArgs...); err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	return &receipt, nil
}

// UpdateReceipt modifies a receipt.
func (r *SalesRepo) UpdateReceipt(ctx context.Context, receipt *sales.Receipt) error {
	q := r.builder.
		Update(receiptsTable).
		Set("customer_id", receipt.CustomerID).
		Set("file_path", receipt.FilePath).
		Set("sales_reference", receipt.SalesReference).
		Set("receipt_number", receipt.ReceiptNumber).
		Where(squirrel.Eq{"id": receipt.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("receipt", receipt.ID.String())
	}
	return nil
}

// ListReceiptsByDay retrieves receipts created on one calendar day, newest
// first.
func (r *SalesRepo) ListReceiptsByDay(ctx context.Context, day time.Time, limit int) ([]*sales.Receipt, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	q := r.builder.
		Select(receiptColumns...).
		From(receiptsTable).
		Where(squirrel.GtOrEq{"created_at": start}).
		Where(squirrel.Lt{"created_at": end}).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var receipts []*sales.Receipt
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &receipts, sql, args...); err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}

	return receipts, nil
}

type paymentAmountRow struct {
	Payment sales.PaymentType `db:"payment_type"`
	Amount  types.Money       `db:"amount"`
}

// CashierSummary aggregates the staff member's items for one day.
func (r *SalesRepo) CashierSummary(ctx context.Context, staffName string, day time.Time) (*sales.CashierSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	dayCond := squirrel.And{
		squirrel.Eq{"s.staff_name": staffName},
		squirrel.GtOrEq{"s.sale_date": start},
		squirrel.Lt{"s.sale_date": end},
	}

	querier := r.txManager.GetQuerier(ctx)
	summary := &sales.CashierSummary{
		TotalSales:         types.Zero(),
		PaymentTypeAmounts: map[sales.PaymentType]types.Money{},
	}

	totalQ := r.builder.
		Select("COALESCE(SUM(s.total_amount), 0)").
		From(salesTable + " s").
		Where(dayCond)

	totalSQL, totalArgs, err := totalQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build total query: %w", err)
	}
	if err := querier.QueryRow(ctx, totalSQL, totalArgs...).Scan(&summary.TotalSales); err != nil {
		return nil, fmt.Errorf("sum sales: %w", err)
	}

	paymentQ := r.builder.
		Select("s.payment_type", "COALESCE(SUM(s.total_amount), 0) AS amount").
		From(salesTable + " s").
		Where(dayCond).
		GroupBy("s.payment_type")

	paymentSQL, paymentArgs, err := paymentQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payment query: %w", err)
	}

	var paymentRows []paymentAmountRow
	if err := pgxscan.Select(ctx, querier, &paymentRows, paymentSQL, paymentArgs...); err != nil {
		return nil, fmt.Errorf("sum by payment type: %w", err)
	}
	for _, row := range paymentRows {
		summary.PaymentTypeAmounts[row.Payment] = row.Amount
	}

	topQ := r.builder.
		Select("p.name AS product_name", "SUM(i.quantity)::int AS total_qty").
		From(itemsTable + " i").
		Join(salesTable + " s ON s.id = i.sale_id").
		Join("cat_products p ON p.id = i.product_id").
		Where(dayCond).
		GroupBy("p.name").
		OrderBy("total_qty DESC").
		Limit(1)

	topSQL, topArgs, err := topQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top product query: %w", err)
	}

	var top sales.TopProduct
	err = pgxscan.Get(ctx, querier, &top, topSQL, topArgs...)
	switch {
	case err == nil:
		summary.TopProduct = &top
	case pgxscan.NotFound(err):
		// No sales today.
	default:
		return nil, fmt.Errorf("top product: %w", err)
	}

	return summary, nil
}
