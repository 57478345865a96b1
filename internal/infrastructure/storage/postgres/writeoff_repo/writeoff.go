// Package writeoff_repo provides the PostgreSQL implementation of the
// inventory write-off repository.
package writeoff_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/writeoff"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const writeOffsTable = "doc_write_offs"

var writeOffColumns = []string{
	"id", "reference", "product_id", "description",
	"quantity", "reason", "unit_price", "loss_value",
	"note", "created_by_name", "date",
}

// WriteOffRepo implements writeoff.Repository.
type WriteOffRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewWriteOffRepo creates a new write-off repository.
func NewWriteOffRepo(txManager *postgres.TxManager) *WriteOffRepo {
	return &WriteOffRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a write-off. Append-only.
func (r *WriteOffRepo) Create(ctx context.Context, w *writeoff.WriteOff) error {
	q := r.builder.
		Insert(writeOffsTable).
		Columns(writeOffColumns...).
		Values(
			w.ID, w.Reference, w.ProductID, w.Description,
			w.Quantity, w.Reason, w.UnitPrice, w.LossValue,
			w.Note, w.CreatedByName, w.Date,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert write-off: %w", err)
	}
	return nil
}

// ReferenceExists checks a candidate reference for uniqueness.
func (r *WriteOffRepo) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	q := r.builder.
		Select("1").
		From(writeOffsTable).
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

// GetByID retrieves a write-off by ID.
func (r *WriteOffRepo) GetByID(ctx context.Context, writeOffID id.ID) (*writeoff.WriteOff, error) {
	var w writeoff.WriteOff

	q := r.builder.
		Select(writeOffColumns...).
		From(writeOffsTable).
		Where(squirrel.Eq{"id": writeOffID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("write-off", writeOffID.String())
		}
		return nil, fmt.Errorf("get write-off: %w", err)
	}

	return &w, nil
}

func (r *WriteOffRepo) applyFilter(q squirrel.SelectBuilder, f writeoff.Filter) squirrel.SelectBuilder {
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Reason != nil {
		q = q.Where(squirrel.Eq{"reason": *f.Reason})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"date": *f.To})
	}
	return q
}

// List retrieves write-offs, newest first.
func (r *WriteOffRepo) List(ctx context.Context, f writeoff.Filter) (domain.ListResult[*writeoff.WriteOff], error) {
	result := domain.ListResult[*writeoff.WriteOff]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.applyFilter(r.builder.Select(writeOffColumns...).From(writeOffsTable), f)

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count write-offs: %w", err)
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
		return result, fmt.Errorf("list write-offs: %w", err)
	}

	return result, nil
}

// TotalLoss sums loss_value over the filtered rows.
func (r *WriteOffRepo) TotalLoss(ctx context.Context, f writeoff.Filter) (types.Money, error) {
	q := r.applyFilter(
		r.builder.Select("COALESCE(SUM(loss_value), 0)").From(writeOffsTable),
		f,
	)

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var total types.Money
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("total loss: %w", err)
	}
	return total, nil
}
