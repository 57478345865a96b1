package overhead

import (
	"context"
	"time"

	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
)

// Filter narrows overhead listings.
type Filter struct {
	From     *time.Time
	To       *time.Time
	Type     Type
	Category Category
	Search   string
	Limit    int
	Offset   int
}

// Repository persists overhead records.
type Repository interface {
	Create(ctx context.Context, o *Overhead) error
	GetByID(ctx context.Context, overheadID id.ID) (*Overhead, error)
	Update(ctx context.Context, o *Overhead) error
	List(ctx context.Context, f Filter) (domain.ListResult[*Overhead], error)

	// ListRecurring returns every recurring overhead for amortization math.
	ListRecurring(ctx context.Context) ([]*Overhead, error)

	// SumByType totals amounts for one overhead type; an empty type totals
	// everything.
	SumByType(ctx context.Context, t Type) (types.Money, error)
}
