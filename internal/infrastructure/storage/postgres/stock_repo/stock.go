// Package stock_repo provides the PostgreSQL implementation of the stock
// batch and history repository.
package stock_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/stock"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const (
	historyTable = "reg_stock_history"
	batchesTable = "reg_product_batches"
)

var historyColumns = []string{
	"id", "reference", "product_id", "action",
	"quantity", "action_by", "notes", "date",
}

var batchColumns = []string{
	"id", "created_at", "updated_at",
	"product_id", "batch_number", "quantity_left",
	"expiry_date", "expiry_min_threshold_days",
	"created_by_name", "updated_by_name",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateHistory inserts an audit entry.
func (r *StockRepo) CreateHistory(ctx context.Context, h *stock.History) error {
	q := r.builder.
		Insert(historyTable).
		Columns(historyColumns...).
		Values(
			h.ID, h.Reference, h.ProductID, h.Action,
			h.Quantity, h.ActionBy, h.Notes, h.Date,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// HistoryReferenceExists checks a candidate reference for uniqueness.
func (r *StockRepo) HistoryReferenceExists(ctx context.Context, ref string) (bool, error) {
	return r.exists(ctx, historyTable, squirrel.Eq{"reference": ref})
}

// ListHistory retrieves audit entries, newest first.
func (r *StockRepo) ListHistory(ctx context.Context, f stock.HistoryFilter) (domain.ListResult[*stock.History], error) {
	result := domain.ListResult[*stock.History]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.builder.
		Select(historyColumns...).
		From(historyTable)

	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Action != nil {
		q = q.Where(squirrel.Eq{"action": *f.Action})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"reference": pattern},
			squirrel.ILike{"notes": pattern},
			squirrel.ILike{"action_by": pattern},
		})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count history: %w", err)
	}

	q = q.OrderBy("date DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list history: %w", err)
	}

	return result, nil
}

// CreateBatch inserts a batch.
func (r *StockRepo) CreateBatch(ctx context.Context, b *stock.Batch) error {
	q := r.builder.
		Insert(batchesTable).
		Columns(batchColumns...).
		Values(
			b.ID, b.CreatedAt, b.UpdatedAt,
			b.ProductID, b.BatchNumber, b.QuantityLeft,
			b.ExpiryDate, b.ExpiryMinThresholdDays,
			b.CreatedByName, b.UpdatedByName,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetBatch retrieves a batch by ID.
func (r *StockRepo) GetBatch(ctx context.Context, batchID id.ID) (*stock.Batch, error) {
	var b stock.Batch

	q := r.builder.
		Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"id": batchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", batchID.String())
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}

	return &b, nil
}

// UpdateBatch modifies a batch.
func (r *StockRepo) UpdateBatch(ctx context.Context, b *stock.Batch) error {
	q := r.builder.
		Update(batchesTable).
		Set("updated_at", b.UpdatedAt).
		Set("batch_number", b.BatchNumber).
		Set("quantity_left", b.QuantityLeft).
		Set("expiry_date", b.ExpiryDate).
		Set("expiry_min_threshold_days", b.ExpiryMinThresholdDays).
		Set("updated_by_name", b.UpdatedByName).
		Where(squirrel.Eq{"id": b.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("batch", b.ID.String())
	}
	return nil
}

// DeleteBatch removes a batch.
func (r *StockRepo) DeleteBatch(ctx context.Context, batchID id.ID) error {
	q := r.builder.
		Delete(batchesTable).
		Where(squirrel.Eq{"id": batchID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("batch", batchID.String())
	}
	return nil
}

// ListBatches retrieves all batches, newest first.
func (r *StockRepo) ListBatches(ctx context.Context, limit, offset int) (domain.ListResult[*stock.Batch], error) {
	result := domain.ListResult[*stock.Batch]{
		Limit:  limit,
		Offset: offset,
	}

	countQ := r.builder.Select("COUNT(*)").From(batchesTable)
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count batches: %w", err)
	}

	q := r.builder.
		Select(batchColumns...).
		From(batchesTable).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list batches: %w", err)
	}

	return result, nil
}

// GetDrainableBatches retrieves the product's batches with stock left under
// row locks, soonest expiry first. Batches without an expiry date drain last.
func (r *StockRepo) GetDrainableBatches(ctx context.Context, productID id.ID) ([]*stock.Batch, error) {
	q := r.builder.
		Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Gt{"quantity_left": 0}).
		OrderBy("expiry_date ASC NULLS LAST", "created_at ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*stock.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("get drainable batches: %w", err)
	}

	return batches, nil
}

// SetBatchQuantity updates only the quantity_left column.
func (r *StockRepo) SetBatchQuantity(ctx context.Context, batchID id.ID, quantityLeft int) error {
	q := r.builder.
		Update(batchesTable).
		Set("quantity_left", quantityLeft).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": batchID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set batch quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("batch", batchID.String())
	}
	return nil
}

func (r *StockRepo) exists(ctx context.Context, table string, cond squirrel.Eq) (bool, error) {
	q := r.builder.
		Select("1").
		From(table).
		Where(cond).
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
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}
