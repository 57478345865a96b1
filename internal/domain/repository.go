// Package domain holds the business-level interfaces and shared types
// the concrete storage and service layers build on.
package domain

import (
	"context"

	"swiftpos/internal/core/entity"
	"swiftpos/internal/core/id"
	"swiftpos/internal/domain/filter"
)

// ListFilter is the common query shape for list endpoints: substring
// search, explicit IDs, arbitrary field conditions, ordering and paging.
type ListFilter struct {
	Search          string
	IDs             []id.ID
	AdvancedFilters []filter.Item

	// OrderBy names a sortable column, "-" prefix for descending.
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns the defaults applied when a request sends
// no paging parameters.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult is one page of items plus the unpaged total.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository is the storage contract every reference-data
// repository (products, suppliers, customers, units, categories)
// satisfies.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	GetByName(ctx context.Context, name string) (T, error)
	Update(ctx context.Context, entity T) error

	// Delete removes the row. Referenced entities fail with an
	// integrity error instead.
	Delete(ctx context.Context, id id.ID) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
	Exists(ctx context.Context, id id.ID) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// HookEvent names a lifecycle point around CRUD operations.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook runs at a lifecycle point; a returned error aborts the
// surrounding operation.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry collects hooks per event for one entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On appends a hook for the event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run fires the event's hooks in registration order, stopping at the
// first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
