// Package event defines the domain side of the transactional outbox:
// services publish events through Publisher and the storage layer decides
// how they are persisted and relayed.
package event

import (
	"context"

	"swiftpos/internal/core/id"
)

// Event is a domain event emitted alongside a business change.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	Type          string
	Payload       any
}

// Publisher persists events. Implementations are expected to write them
// within the caller's transaction so the event commits with the change.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events. Used in tests and in tools that run the domain
// services without an outbox.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
