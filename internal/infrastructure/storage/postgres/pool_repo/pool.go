// Package pool_repo provides the PostgreSQL implementation of the resale
// pool repository.
package pool_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain/pool"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const entriesTable = "reg_pool_entries"

var entryColumns = []string{
	"id", "reference", "kind",
	"product_id", "product_code", "product_name",
	"initial_unit_price", "resale_price", "quantity", "loss_value",
	"staff_name", "last_updated_name",
	"note", "description", "is_approved",
	"created_at", "updated_at",
}

// PoolRepo implements pool.Repository.
type PoolRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPoolRepo creates a new pool repository.
func NewPoolRepo(txManager *postgres.TxManager) *PoolRepo {
	return &PoolRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a pool entry.
func (r *PoolRepo) Create(ctx context.Context, e *pool.Entry) error {
	q := r.builder.
		Insert(entriesTable).
		Columns(entryColumns...).
		Values(
			e.ID, e.Reference, e.Kind,
			e.ProductID, e.ProductCode, e.ProductName,
			e.InitialUnitPrice, e.ResalePrice, e.Quantity, e.LossValue,
			e.StaffName, e.LastUpdatedName,
			e.Note, e.Description, e.IsApproved,
			e.CreatedAt, e.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert pool entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by ID.
func (r *PoolRepo) GetByID(ctx context.Context, entryID id.ID) (*pool.Entry, error) {
	return r.get(ctx, squirrel.Eq{"id": entryID}, entryID.String(), "")
}

// GetForUpdate retrieves an entry with a row lock.
func (r *PoolRepo) GetForUpdate(ctx context.Context, entryID id.ID) (*pool.Entry, error) {
	return r.get(ctx, squirrel.Eq{"id": entryID}, entryID.String(), "FOR UPDATE")
}

// GetByProductCode retrieves the entry of one kind for a product code.
func (r *PoolRepo) GetByProductCode(ctx context.Context, kind pool.Kind, productCode string) (*pool.Entry, error) {
	return r.get(ctx, squirrel.Eq{"kind": kind, "product_code": productCode}, productCode, "")
}

func (r *PoolRepo) get(ctx context.Context, cond squirrel.Eq, key, suffix string) (*pool.Entry, error) {
	var e pool.Entry

	q := r.builder.
		Select(entryColumns...).
		From(entriesTable).
		Where(cond)
	if suffix != "" {
		q = q.Suffix(suffix)
	} else {
		q = q.Limit(1)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("pool entry", key)
		}
		return nil, fmt.Errorf("get pool entry: %w", err)
	}

	return &e, nil
}

// Update modifies an entry.
func (r *PoolRepo) Update(ctx context.Context, e *pool.Entry) error {
	q := r.builder.
		Update(entriesTable).
		Set("resale_price", e.ResalePrice).
		Set("quantity", e.Quantity).
		Set("loss_value", e.LossValue).
		Set("last_updated_name", e.LastUpdatedName).
		Set("note", e.Note).
		Set("description", e.Description).
		Set("is_approved", e.IsApproved).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": e.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update pool entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("pool entry", e.ID.String())
	}
	return nil
}

// Delete removes an entry.
func (r *PoolRepo) Delete(ctx context.Context, entryID id.ID) error {
	q := r.builder.
		Delete(entriesTable).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete pool entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("pool entry", entryID.String())
	}
	return nil
}

// List retrieves entries, newest first.
func (r *PoolRepo) List(ctx context.Context, f pool.Filter) ([]*pool.Entry, error) {
	q := r.builder.
		Select(entryColumns...).
		From(entriesTable).
		OrderBy("created_at DESC")

	if f.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": f.Kind})
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
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

	var entries []*pool.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list pool entries: %w", err)
	}

	return entries, nil
}

// ReferenceExists checks a candidate reference for uniqueness.
func (r *PoolRepo) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	q := r.builder.
		Select("1").
		From(entriesTable).
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

// TotalLoss sums loss_value over live entries of one kind.
func (r *PoolRepo) TotalLoss(ctx context.Context, kind pool.Kind) (types.Money, error) {
	q := r.builder.
		Select("COALESCE(SUM(loss_value), 0)").
		From(entriesTable).
		Where(squirrel.Eq{"kind": kind})

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
