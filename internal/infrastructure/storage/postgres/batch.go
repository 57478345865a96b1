package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk-loads rows over the COPY protocol. The seed tool
// uses it for the demo catalog; anything loading more than a handful of
// rows should prefer it over row-by-row inserts.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice streams rows into table. Must run inside a transaction
// so a partial load never becomes visible.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	activeTx := b.txManager.GetTx(ctx)
	if activeTx == nil {
		return 0, fmt.Errorf("copy into %s: no active transaction", table)
	}

	count, err := activeTx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return count, nil
}

// BatchQuery is one statement queued into a BatchExecutor run.
type BatchQuery struct {
	SQL  string
	Args []any
}

// BatchExecutor sends several statements to the server in one
// round-trip via pgx.Batch.
type BatchExecutor struct {
	txManager *TxManager
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// ExecuteBatch queues every query and executes them together. Must run
// inside a transaction.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery) error {
	activeTx := e.txManager.GetTx(ctx)
	if activeTx == nil {
		return fmt.Errorf("execute batch: no active transaction")
	}

	var batch pgx.Batch
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := activeTx.SendBatch(ctx, &batch)
	defer results.Close()

	for i := range queries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}
