// Package unit provides the unit-of-measure catalog (piece, carton, litre).
package unit

import (
	"context"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/domain"
)

// Unit is a unit of measure a product is sold in.
type Unit struct {
	entity.Catalog
}

// New creates a new Unit.
func New(name string) *Unit {
	return &Unit{Catalog: entity.NewCatalog(name)}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	if u.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines the interface for Unit persistence.
type Repository interface {
	domain.CatalogRepository[*Unit]
}
