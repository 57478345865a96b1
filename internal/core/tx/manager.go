// Package tx defines the transaction boundary used by domain services.
// The postgres implementation lives in infrastructure/storage/postgres;
// services only ever see this interface.
package tx

import "context"

// Manager runs a function inside a database transaction.
type Manager interface {
	// RunInTransaction begins a transaction, calls fn with a context that
	// carries it, and commits when fn returns nil. Any error rolls the
	// transaction back. Nested calls join the transaction already in ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager additionally supports read-only transactions, which
// report cursors consistently across several queries without taking
// write locks.
type ReadOnlyManager interface {
	Manager

	// ReadOnly runs fn in a READ ONLY transaction; writes inside fn fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
