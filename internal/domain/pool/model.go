// Package pool holds discounted resale pools: products pulled out of
// regular stock because they are expiring soon or damaged, offered at a
// slashed price until the pool entry sells out.
package pool

import (
	"context"
	"strings"
	"time"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// Kind distinguishes the two resale pools.
type Kind string

const (
	KindExpiring Kind = "expiring"
	KindDamaged  Kind = "damaged"
)

// RefPrefix returns the reference prefix used for entries of this kind.
func (k Kind) RefPrefix() string {
	if k == KindDamaged {
		return "DamageProduct"
	}
	return "ExpiringProduct"
}

// DescriptionSuffix is appended to the product description when the entry
// is created, so receipts can tell pool lines apart from regular ones.
func (k Kind) DescriptionSuffix() string {
	if k == KindDamaged {
		return " (DP)"
	}
	return " (EP)"
}

// IsValid reports whether k is a known pool kind.
func (k Kind) IsValid() bool {
	return k == KindExpiring || k == KindDamaged
}

// Entry is one pool row. Entries aggregate per product code within a kind:
// slashing the same product twice grows the existing entry instead of
// creating a second one. An entry whose quantity reaches zero is deleted.
type Entry struct {
	ID        id.ID  `db:"id" json:"id"`
	Reference string `db:"reference" json:"reference"`
	Kind      Kind   `db:"kind" json:"kind"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductCode string `db:"product_code" json:"productCode"`
	ProductName string `db:"product_name" json:"productName"`

	// InitialUnitPrice is the product's VAT-applied selling price at the
	// time of the slash, frozen for loss accounting.
	InitialUnitPrice types.Money `db:"initial_unit_price" json:"initialUnitPrice"`
	ResalePrice      types.Money `db:"resale_price" json:"resalePrice"`
	Quantity         int         `db:"quantity" json:"quantity"`
	LossValue        types.Money `db:"loss_value" json:"lossValue"`

	StaffName       string `db:"staff_name" json:"staffName"`
	LastUpdatedName string `db:"last_updated_name" json:"lastUpdatedName,omitempty"`

	Note        string `db:"note" json:"note"`
	Description string `db:"description" json:"description,omitempty"`
	IsApproved  bool   `db:"is_approved" json:"isApproved"`

	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// NewEntry creates a pool entry snapshotting product details.
func NewEntry(kind Kind, productID id.ID, productCode, productName string, initialPrice types.Money) *Entry {
	return &Entry{
		ID:               id.New(),
		Kind:             kind,
		ProductID:        productID,
		ProductCode:      productCode,
		ProductName:      productName,
		InitialUnitPrice: initialPrice,
		CreatedAt:        time.Now().UTC(),
	}
}

// RecalcLoss recomputes the loss value from the frozen initial price,
// the resale price and the current quantity.
func (e *Entry) RecalcLoss() {
	e.LossValue = types.RoundCents(
		e.InitialUnitPrice.Sub(e.ResalePrice).Mul(types.MoneyFromInt(int64(e.Quantity))))
}

// Validate checks the caller-supplied fields of a slash request.
func (e *Entry) Validate(ctx context.Context) error {
	if !e.Kind.IsValid() {
		return apperror.NewValidation("unknown pool kind").
			WithDetail("field", "kind").
			WithDetail("value", string(e.Kind))
	}
	if e.ResalePrice.LessThanOrEqual(types.Zero()) {
		return apperror.NewValidation("Resale price must be greater than 0.").
			WithDetail("field", "resale_price")
	}
	if e.Quantity <= 0 {
		return apperror.NewValidation("Quantity must be greater than 0.").
			WithDetail("field", "quantity")
	}
	if strings.TrimSpace(e.Note) == "" {
		return apperror.NewValidation("Note cannot be blank or whitespace.").
			WithDetail("field", "note")
	}
	return nil
}
