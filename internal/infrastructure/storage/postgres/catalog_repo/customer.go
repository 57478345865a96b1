package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/domain/catalogs/customer"
	"swiftpos/internal/infrastructure/storage/postgres"
)

const customersTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			customersTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// RankByPurchaseVolume aggregates sale totals per customer.
func (r *CustomerRepo) RankByPurchaseVolume(ctx context.Context) ([]customer.PurchaseVolume, error) {
	q := r.Builder().
		Select(
			"s.customer_id",
			"COALESCE(SUM(s.total_amount), 0)::bigint AS total_amount",
			"COALESCE(SUM(i.quantity), 0)::bigint AS total_qty",
		).
		From("doc_sales s").
		Join("doc_sale_items i ON i.sale_id = s.id").
		Where(squirrel.NotEq{"s.customer_id": nil}).
		GroupBy("s.customer_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var volumes []customer.PurchaseVolume
	querier := r.TxManager().GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &volumes, sql, args...); err != nil {
		return nil, fmt.Errorf("rank by purchase volume: %w", err)
	}

	return volumes, nil
}

// SetBadge updates only the badge column.
func (r *CustomerRepo) SetBadge(ctx context.Context, customerID id.ID, badge customer.Badge) error {
	q := r.Builder().
		Update(customersTable).
		Set("badge", badge).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": customerID})

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
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}
