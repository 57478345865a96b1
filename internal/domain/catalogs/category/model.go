// Package category provides the product category catalog.
package category

import (
	"context"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/domain"
)

// Category groups products for reporting and browsing.
type Category struct {
	entity.Catalog
}

// New creates a new Category.
func New(name string) *Category {
	return &Category{Catalog: entity.NewCatalog(name)}
}

// Validate implements entity.Validatable.
func (c *Category) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]
}
