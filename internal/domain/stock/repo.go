package stock

import (
	"context"

	"swiftpos/internal/core/id"
	"swiftpos/internal/domain"
)

// HistoryFilter narrows stock history queries.
type HistoryFilter struct {
	ProductID *id.ID
	Action    *Action
	Search    string
	Limit     int
	Offset    int
}

// Repository defines the interface for batch and history persistence.
type Repository interface {
	// CreateHistory inserts an audit entry.
	CreateHistory(ctx context.Context, h *History) error

	// HistoryReferenceExists checks a candidate reference for uniqueness.
	HistoryReferenceExists(ctx context.Context, ref string) (bool, error)

	// ListHistory retrieves audit entries, newest first.
	ListHistory(ctx context.Context, filter HistoryFilter) (domain.ListResult[*History], error)

	// CreateBatch inserts a batch.
	CreateBatch(ctx context.Context, b *Batch) error

	// GetBatch retrieves a batch by ID.
	GetBatch(ctx context.Context, batchID id.ID) (*Batch, error)

	// UpdateBatch modifies a batch.
	UpdateBatch(ctx context.Context, b *Batch) error

	// DeleteBatch removes a batch.
	DeleteBatch(ctx context.Context, batchID id.ID) error

	// ListBatches retrieves all batches, newest first.
	ListBatches(ctx context.Context, limit, offset int) (domain.ListResult[*Batch], error)

	// GetDrainableBatches retrieves the product's batches with stock left,
	// ordered soonest expiry first, under row locks.
	// Must be called inside a transaction.
	GetDrainableBatches(ctx context.Context, productID id.ID) ([]*Batch, error)

	// SetBatchQuantity updates only the quantity_left column.
	SetBatchQuantity(ctx context.Context, batchID id.ID, quantityLeft int) error
}
