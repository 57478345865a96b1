// Package customer provides the customer catalog.
package customer

import (
	"context"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
	"swiftpos/internal/domain"
)

// Status marks whether a customer is still active.
type Status string

const (
	StatusActive       Status = "active"
	StatusDiscontinued Status = "discontinue"
)

// Badge ranks customers by purchase volume.
type Badge string

const (
	BadgeTop    Badge = "Top Customer"
	BadgeNormal Badge = "Normal Customer"
	BadgeLow    Badge = "Low Customer"
)

// Customer represents a known buyer. Sales may also be anonymous.
type Customer struct {
	entity.Catalog

	Phone   *string `db:"phone" json:"phone,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`

	Status Status `db:"status" json:"status"`

	// Badge is recomputed from purchase volume, not set by callers
	Badge Badge `db:"badge" json:"badge"`

	CreatedByName string `db:"created_by_name" json:"createdByName,omitempty"`
}

// New creates a new Customer.
func New(name string) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(name),
		Status:  StatusActive,
		Badge:   BadgeNormal,
	}
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.Status != StatusActive && c.Status != StatusDiscontinued {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(c.Status))
	}
	return nil
}

// PurchaseVolume aggregates a customer's total purchase amount and quantity.
type PurchaseVolume struct {
	CustomerID  id.ID `db:"customer_id"`
	TotalAmount int64 `db:"total_amount"`
	TotalQty    int64 `db:"total_qty"`
}

// Score ranks a customer: amount plus ten points per purchased unit.
func (v PurchaseVolume) Score() int64 {
	return v.TotalAmount + v.TotalQty*10
}

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// RankByPurchaseVolume returns customers with their aggregated sale
	// totals, unordered. Score-based ranking happens in the service.
	RankByPurchaseVolume(ctx context.Context) ([]PurchaseVolume, error)

	// SetBadge updates only the badge column.
	SetBadge(ctx context.Context, customerID id.ID, badge Badge) error
}
