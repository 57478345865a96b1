// Package writeoff provides permanent inventory loss records.
// Write-offs are append-only: there is no update or delete path.
package writeoff

import (
	"context"
	"time"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
)

// Reason classifies why stock was lost.
type Reason string

const (
	ReasonDamaged    Reason = "Damaged"
	ReasonReturned   Reason = "Return to supplier"
	ReasonExpired    Reason = "Expired"
	ReasonLost       Reason = "Lost"
	ReasonAdjustment Reason = "Adjustment"
)

var validReasons = map[Reason]bool{
	ReasonDamaged:    true,
	ReasonReturned:   true,
	ReasonExpired:    true,
	ReasonLost:       true,
	ReasonAdjustment: true,
}

// IsValidReason reports whether the reason is known.
func IsValidReason(r Reason) bool {
	return validReasons[r]
}

// WriteOff is one permanent loss record not tied to a sale.
type WriteOff struct {
	ID id.ID `db:"id" json:"id"`

	// Reference is a unique human-pasteable identifier
	Reference string `db:"reference" json:"reference"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Description is snapshotted from the product at creation
	Description string `db:"description" json:"description"`

	Quantity int    `db:"quantity" json:"quantity"`
	Reason   Reason `db:"reason" json:"reason"`

	// UnitPrice is the product's sale price at the time of loss
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// LossValue = UnitPrice * Quantity
	LossValue types.Money `db:"loss_value" json:"lossValue"`

	Note string `db:"note" json:"note,omitempty"`

	CreatedByName string    `db:"created_by_name" json:"createdByName,omitempty"`
	Date          time.Time `db:"date" json:"date"`
}

// New creates a write-off, snapshotting product pricing and deriving the loss.
func New(productID id.ID, description string, quantity int, reason Reason, unitPrice types.Money) *WriteOff {
	w := &WriteOff{
		ID:          id.New(),
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		Reason:      reason,
		UnitPrice:   unitPrice,
		Date:        time.Now().UTC(),
	}
	w.LossValue = unitPrice.Mul(types.MoneyFromInt(int64(quantity)))
	return w
}

// Validate implements entity.Validatable.
func (w *WriteOff) Validate(ctx context.Context) error {
	if id.IsNil(w.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if w.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if !IsValidReason(w.Reason) {
		return apperror.NewValidation("invalid write-off reason").
			WithDetail("field", "reason").
			WithDetail("value", string(w.Reason))
	}
	return nil
}

// Filter narrows write-off queries.
type Filter struct {
	ProductID *id.ID
	Reason    *Reason
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// Repository defines the interface for WriteOff persistence.
// Append-only: no update or delete.
type Repository interface {
	Create(ctx context.Context, w *WriteOff) error
	ReferenceExists(ctx context.Context, ref string) (bool, error)
	GetByID(ctx context.Context, writeOffID id.ID) (*WriteOff, error)
	List(ctx context.Context, filter Filter) (domain.ListResult[*WriteOff], error)

	// TotalLoss sums loss_value over the filtered rows.
	TotalLoss(ctx context.Context, filter Filter) (types.Money, error)
}
