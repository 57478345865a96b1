package pool

import (
	"context"

	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
)

// Filter narrows pool listings.
type Filter struct {
	Kind      Kind
	ProductID *id.ID
	Limit     int
	Offset    int
}

// Repository persists pool entries.
//
// GetForUpdate must lock the row for the duration of the enclosing
// transaction; the sale workflow relies on it to serialize deductions.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)
	GetForUpdate(ctx context.Context, entryID id.ID) (*Entry, error)
	GetByProductCode(ctx context.Context, kind Kind, productCode string) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, entryID id.ID) error
	List(ctx context.Context, f Filter) ([]*Entry, error)
	ReferenceExists(ctx context.Context, ref string) (bool, error)

	// TotalLoss sums loss_value over live entries of one kind.
	TotalLoss(ctx context.Context, kind Kind) (types.Money, error)
}
