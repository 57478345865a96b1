package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/domain"
	"swiftpos/internal/domain/catalogs/product"
	"swiftpos/internal/domain/filter"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

var productColumns = postgres.ExtractDBColumns[product.Product]()

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productsTable,
			productColumns,
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetByCode retrieves a product by its unique code.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	var p product.Product

	q := r.Builder().
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", code)
		}
		return nil, fmt.Errorf("get by code: %w", err)
	}

	return &p, nil
}

// ExistsByCode checks if a product with the given code exists.
func (r *ProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(productsTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	var one int
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by code: %w", err)
	}
	return true, nil
}

// GetForUpdate retrieves a product with a row lock.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	var p product.Product

	q := r.Builder().
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get for update: %w", err)
	}

	return &p, nil
}

// SetQuantity updates only the quantity column.
func (r *ProductRepo) SetQuantity(ctx context.Context, productID id.ID, quantity int) error {
	q := r.Builder().
		Update(productsTable).
		Set("quantity", quantity).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// FindLowStock retrieves products at or below their minimum threshold.
func (r *ProductRepo) FindLowStock(ctx context.Context, f domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.Builder().
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Expr("quantity <= min_stock_threshold")).
		OrderBy("quantity ASC", "name ASC")

	countQ := r.Builder().
		Select("COUNT(*)").
		From(productsTable).
		Where(squirrel.Expr("quantity <= min_stock_threshold"))

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.TxManager().GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count low stock: %w", err)
	}

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
		return result, fmt.Errorf("find low stock: %w", err)
	}

	return result, nil
}

// ListByCategory retrieves products in a category.
func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID id.ID, f domain.ListFilter) (domain.ListResult[*product.Product], error) {
	f.AdvancedFilters = append(f.AdvancedFilters, filter.Item{
		Field:    "category_id",
		Operator: filter.Equal,
		Value:    categoryID,
	})
	return r.List(ctx, f)
}
