// Package stock provides batch tracking and the stock movement audit trail.
package stock

import (
	"context"
	"fmt"
	"time"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
)

// Action tags a stock history entry with what happened.
type Action string

const (
	ActionStockIn    Action = "Stock In"
	ActionSold       Action = "Sold"
	ActionDamaged    Action = "Damaged"
	ActionReturned   Action = "Returned to Supplier"
	ActionExpired    Action = "Expired"
	ActionLost       Action = "Lost / Stolen"
	ActionAdjustment Action = "Inventory Adjustment"
)

var validActions = map[Action]bool{
	ActionStockIn:    true,
	ActionSold:       true,
	ActionDamaged:    true,
	ActionReturned:   true,
	ActionExpired:    true,
	ActionLost:       true,
	ActionAdjustment: true,
}

// IsValidAction reports whether the action is a known history tag.
func IsValidAction(a Action) bool {
	return validActions[a]
}

// History is one stock movement audit entry. Append-only.
type History struct {
	ID id.ID `db:"id" json:"id"`

	// Reference is a unique human-pasteable identifier
	Reference string `db:"reference" json:"reference"`

	ProductID id.ID  `db:"product_id" json:"productId"`
	Action    Action `db:"action" json:"action"`

	// Quantity is the moved amount. Positive for intake, the sale and
	// adjustment paths record the deducted amount as entered.
	Quantity int `db:"quantity" json:"quantity"`

	// ActionBy is the display name of the acting user (snapshot)
	ActionBy string `db:"action_by" json:"actionBy"`

	Notes string    `db:"notes" json:"notes,omitempty"`
	Date  time.Time `db:"date" json:"date"`
}

// Batch is a dated slice of a product's stock with its own expiry.
// Batches are drained oldest-expiry-first by the sale workflow.
type Batch struct {
	entity.BaseEntity

	ProductID id.ID `db:"product_id" json:"productId"`

	// BatchNumber is globally unique
	BatchNumber string `db:"batch_number" json:"batchNumber"`

	QuantityLeft           int        `db:"quantity_left" json:"quantityLeft"`
	ExpiryDate             *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
	ExpiryMinThresholdDays *int       `db:"expiry_min_threshold_days" json:"expiryMinThresholdDays,omitempty"`

	CreatedByName string `db:"created_by_name" json:"createdByName,omitempty"`
	UpdatedByName string `db:"updated_by_name" json:"updatedByName,omitempty"`
}

// NewBatch creates a batch for a product delivery.
func NewBatch(productID id.ID, batchNumber string, quantity int) *Batch {
	return &Batch{
		BaseEntity:   entity.NewBaseEntity(),
		ProductID:    productID,
		BatchNumber:  batchNumber,
		QuantityLeft: quantity,
	}
}

// Validate implements entity.Validatable.
func (b *Batch) Validate(ctx context.Context) error {
	if b.BatchNumber == "" {
		return apperror.NewValidation("batch number is required").
			WithDetail("field", "batchNumber")
	}
	if b.QuantityLeft < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantityLeft")
	}
	if id.IsNil(b.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	return nil
}

// Status derives the display state of the batch from expiry and quantity.
func (b *Batch) Status(now time.Time) string {
	if b.QuantityLeft == 0 {
		return "sold out"
	}
	if b.ExpiryDate == nil {
		return "no expiry"
	}

	daysToExpiry := int(b.ExpiryDate.Sub(now).Hours() / 24)
	switch {
	case daysToExpiry < 0:
		return "expired"
	case b.ExpiryMinThresholdDays != nil && daysToExpiry <= *b.ExpiryMinThresholdDays:
		return "expiring"
	default:
		return fmt.Sprintf("%d days left to expiry", daysToExpiry)
	}
}
