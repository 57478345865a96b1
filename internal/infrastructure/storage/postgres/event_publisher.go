package postgres

import (
	"context"

	"swiftpos/internal/domain/event"
)

// EventPublisher adapts the transactional outbox to the domain event port.
type EventPublisher struct {
	outbox *OutboxPublisher
}

// NewEventPublisher creates a new event publisher backed by the outbox.
func NewEventPublisher(txManager *TxManager) *EventPublisher {
	return &EventPublisher{outbox: NewOutboxPublisher(txManager)}
}

// Publish writes the event to the outbox within the current transaction.
func (p *EventPublisher) Publish(ctx context.Context, e event.Event) error {
	return p.outbox.Publish(ctx, DomainEvent{
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		EventType:     e.Type,
		Payload:       e.Payload,
	})
}
