package product

import (
	"context"

	"swiftpos/internal/core/id"
	"swiftpos/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetByCode retrieves a product by its unique code.
	GetByCode(ctx context.Context, code string) (*Product, error)

	// ExistsByCode checks if a product with the given code exists.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// GetForUpdate retrieves a product with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// SetQuantity updates only the quantity column.
	SetQuantity(ctx context.Context, id id.ID, quantity int) error

	// FindLowStock retrieves products at or below their minimum threshold.
	FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// ListByCategory retrieves products in a category.
	ListByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error)
}
