package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/domain/catalogs/supplier"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const (
	suppliersTable = "cat_suppliers"
	suppliesTable  = "cat_supplier_supplies"
)

var supplyColumns = []string{
	"id", "supplier_id", "product_id",
	"quantity_supplied", "unit_price", "total_amount", "supply_date",
}

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			suppliersTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// ExistsByEmail checks whether a supplier with the given email exists.
func (r *SupplierRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.existsWhere(ctx, squirrel.Eq{"email": email}, "exists by email")
}

// ExistsByPhone checks whether a supplier with the given phone exists.
func (r *SupplierRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.existsWhere(ctx, squirrel.Eq{"phone": phone}, "exists by phone")
}

// ExistsByAccountNumber checks whether a supplier with the given account
// number exists.
func (r *SupplierRepo) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	return r.existsWhere(ctx, squirrel.Eq{"account_number": accountNumber}, "exists by account number")
}

// GetSupply retrieves the supply record for a (supplier, product) pair.
func (r *SupplierRepo) GetSupply(ctx context.Context, supplierID, productID id.ID) (*supplier.Supply, error) {
	var s supplier.Supply

	q := r.Builder().
		Select(supplyColumns...).
		From(suppliesTable).
		Where(squirrel.Eq{"supplier_id": supplierID, "product_id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supply", supplierID.String())
		}
		return nil, fmt.Errorf("get supply: %w", err)
	}

	return &s, nil
}

// CreateSupply inserts a new supply record.
func (r *SupplierRepo) CreateSupply(ctx context.Context, s *supplier.Supply) error {
	q := r.Builder().
		Insert(suppliesTable).
		Columns(supplyColumns...).
		Values(
			s.ID, s.SupplierID, s.ProductID,
			s.QuantitySupplied, s.UnitPrice, s.TotalAmount, s.SupplyDate,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supply: %w", err)
	}
	return nil
}

// UpdateSupply modifies an existing supply record.
func (r *SupplierRepo) UpdateSupply(ctx context.Context, s *supplier.Supply) error {
	q := r.Builder().
		Update(suppliesTable).
		Set("quantity_supplied", s.QuantitySupplied).
		Set("unit_price", s.UnitPrice).
		Set("total_amount", s.TotalAmount).
		Set("supply_date", s.SupplyDate).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("supply", s.ID.String())
	}
	return nil
}

// ListSupplies retrieves all supply records for a supplier, newest first.
func (r *SupplierRepo) ListSupplies(ctx context.Context, supplierID id.ID) ([]*supplier.Supply, error) {
	q := r.Builder().
		Select(supplyColumns...).
		From(suppliesTable).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		OrderBy("supply_date DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var supplies []*supplier.Supply
	querier := r.TxManager().GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &supplies, sql, args...); err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}

	return supplies, nil
}

// RankBySupplyVolume orders suppliers by total supplied quantity, then amount.
func (r *SupplierRepo) RankBySupplyVolume(ctx context.Context) ([]supplier.SupplyVolume, error) {
	q := r.Builder().
		Select(
			"s.id AS supplier_id",
			"COALESCE(SUM(sp.quantity_supplied), 0)::bigint AS total_qty",
			"COALESCE(SUM(sp.total_amount), 0)::bigint AS total_amount",
		).
		From(suppliersTable + " s").
		LeftJoin(suppliesTable + " sp ON sp.supplier_id = s.id").
		GroupBy("s.id").
		OrderBy("total_qty DESC", "total_amount DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var volumes []supplier.SupplyVolume
	querier := r.TxManager().GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &volumes, sql, args...); err != nil {
		return nil, fmt.Errorf("rank by supply volume: %w", err)
	}

	return volumes, nil
}

// SetBadge updates only the badge column.
func (r *SupplierRepo) SetBadge(ctx context.Context, supplierID id.ID, badge supplier.Badge) error {
	q := r.Builder().
		Update(suppliersTable).
		Set("badge", badge).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set badge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID.String())
	}
	return nil
}
