package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swiftpos/internal/core/id"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// maxOutboxRetries is how many delivery attempts a message gets before
// it is parked as failed.
const maxOutboxRetries = 5

// OutboxMessage is one row of the transactional outbox. Sale commits
// and stock movements publish dashboard events through it.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"` // "Sale", "Product", "PoolEntry"
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"` // "SaleCommitted", "StockAdjusted", ...
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// DomainEvent is the write-side view of an outbox message.
type DomainEvent struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

const outboxInsertSQL = `
	INSERT INTO sys_outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// OutboxPublisher writes events into sys_outbox. It only works inside a
// transaction: the event must commit or roll back together with the
// business change that produced it.
type OutboxPublisher struct {
	txManager *TxManager
}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Publish appends one event to the outbox.
func (p *OutboxPublisher) Publish(ctx context.Context, event DomainEvent) error {
	activeTx := p.txManager.GetTx(ctx)
	if activeTx == nil {
		return fmt.Errorf("outbox publish: no active transaction")
	}

	body, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = activeTx.Exec(ctx, outboxInsertSQL,
		id.New(), event.AggregateType, event.AggregateID, event.EventType,
		body, OutboxStatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// PublishBatch appends several events in one round-trip.
func (p *OutboxPublisher) PublishBatch(ctx context.Context, events []DomainEvent) error {
	activeTx := p.txManager.GetTx(ctx)
	if activeTx == nil {
		return fmt.Errorf("outbox publish: no active transaction")
	}

	now := time.Now().UTC()
	var batch pgx.Batch
	for _, event := range events {
		body, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		batch.Queue(outboxInsertSQL,
			id.New(), event.AggregateType, event.AggregateID, event.EventType,
			body, OutboxStatusPending, now)
	}

	results := activeTx.SendBatch(ctx, &batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert outbox message: %w", err)
		}
	}
	return nil
}

// OutboxHandler receives drained messages. The worker's handler logs
// them and feeds the audit trail.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay drains pending outbox rows and hands them to a handler.
type OutboxRelay struct {
	pool      *pgxpool.Pool
	batchSize int
	handler   OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(pool *pgxpool.Pool, batchSize int, handler OutboxHandler) *OutboxRelay {
	return &OutboxRelay{pool: pool, batchSize: batchSize, handler: handler}
}

// ProcessBatch drains up to batchSize due messages and returns how many
// were delivered. A message whose handler fails stays pending with a
// backoff; it does not stop the rest of the batch.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	var messages []*OutboxMessage

	// SKIP LOCKED lets several workers drain concurrently without
	// delivering the same message twice.
	err := pgxscan.Select(ctx, r.pool, &messages, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, status,
		       retry_count, last_error, next_retry_at, created_at, published_at
		FROM sys_outbox
		WHERE status = $1
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, OutboxStatusPending, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox messages: %w", err)
	}

	delivered := 0
	for _, msg := range messages {
		if err := r.handler.Handle(ctx, msg); err != nil {
			if markErr := r.markFailed(ctx, msg, err); markErr != nil {
				return delivered, markErr
			}
			continue
		}
		if err := r.markPublished(ctx, msg.ID); err != nil {
			return delivered, err
		}
		delivered++
	}

	return delivered, nil
}

func (r *OutboxRelay) markPublished(ctx context.Context, msgID id.ID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, OutboxStatusPublished, time.Now().UTC(), msgID)
	if err != nil {
		return fmt.Errorf("mark message published: %w", err)
	}
	return nil
}

// markFailed bumps the retry counter with a linear backoff and parks
// the message as failed once the attempts run out.
func (r *OutboxRelay) markFailed(ctx context.Context, msg *OutboxMessage, cause error) error {
	backoff := time.Duration(msg.RetryCount+1) * time.Minute

	_, err := r.pool.Exec(ctx, `
		UPDATE sys_outbox
		SET retry_count = retry_count + 1,
		    last_error = $1,
		    next_retry_at = $2,
		    status = CASE WHEN retry_count >= $3 THEN $4 ELSE status END
		WHERE id = $5
	`, cause.Error(), time.Now().Add(backoff), maxOutboxRetries, OutboxStatusFailed, msg.ID)
	if err != nil {
		return fmt.Errorf("mark message failed: %w", err)
	}
	return nil
}
