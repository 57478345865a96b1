// Package overhead_repo provides the PostgreSQL implementation of the
// overhead repository.
package overhead_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/overhead"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const overheadsTable = "doc_overheads"

var overheadColumns = []string{
	"id", "overhead_type", "category", "description",
	"duration", "amount", "created_by_name", "created_at",
}

// OverheadRepo implements overhead.Repository.
type OverheadRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewOverheadRepo creates a new overhead repository.
func NewOverheadRepo(txManager *postgres.TxManager) *OverheadRepo {
	return &OverheadRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an overhead record.
func (r *OverheadRepo) Create(ctx context.Context, o *overhead.Overhead) error {
	q := r.builder.
		Insert(overheadsTable).
		Columns(overheadColumns...).
		Values(
			o.ID, o.Type, o.Category, o.Description,
			o.Duration, o.Amount, o.CreatedByName, o.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert overhead: %w", err)
	}
	return nil
}

// GetByID retrieves an overhead by ID.
func (r *OverheadRepo) GetByID(ctx context.Context, overheadID id.ID) (*overhead.Overhead, error) {
	var o overhead.Overhead

	q := r.builder.
		Select(overheadColumns...).
		From(overheadsTable).
		Where(squirrel.Eq{"id": overheadID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("overhead", overheadID.String())
		}
		return nil, fmt.Errorf("get overhead: %w", err)
	}

	return &o, nil
}

// Update modifies an overhead record.
func (r *OverheadRepo) Update(ctx context.Context, o *overhead.Overhead) error {
	q := r.builder.
		Update(overheadsTable).
		Set("overhead_type", o.Type).
		Set("category", o.Category).
		Set("description", o.Description).
		Set("duration", o.Duration).
		Set("amount", o.Amount).
		Where(squirrel.Eq{"id": o.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update overhead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("overhead", o.ID.String())
	}
	return nil
}

// List retrieves overheads, newest first.
func (r *OverheadRepo) List(ctx context.Context, f overhead.Filter) (domain.ListResult[*overhead.Overhead], error) {
	result := domain.ListResult[*overhead.Overhead]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.builder.
		Select(overheadColumns...).
		From(overheadsTable)

	if f.Type != "" {
		q = q.Where(squirrel.Eq{"overhead_type": f.Type})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + f.Search + "%"})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count overheads: %w", err)
	}

	q = q.OrderBy("created_at DESC")
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
		return result, fmt.Errorf("list overheads: %w", err)
	}

	return result, nil
}

// ListRecurring returns every recurring overhead for amortization math.
func (r *OverheadRepo) ListRecurring(ctx context.Context) ([]*overhead.Overhead, error) {
	q := r.builder.
		Select(overheadColumns...).
		From(overheadsTable).
		Where(squirrel.Eq{"overhead_type": overhead.TypeRecurring}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var overheads []*overhead.Overhead
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &overheads, sql, args...); err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}

	return overheads, nil
}

// SumByType totals amounts for one overhead type; an empty type totals
// everything.
func (r *OverheadRepo) SumByType(ctx context.Context, t overhead.Type) (types.Money, error) {
	q := r.builder.
		Select("COALESCE(SUM(amount), 0)").
		From(overheadsTable)
	if t != "" {
		q = q.Where(squirrel.Eq{"overhead_type": t})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var total types.Money
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum overheads: %w", err)
	}
	return total, nil
}
