package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var errNoTx = errors.New("batch operation requires a transaction")

// BatchInserter bulk inserts rows with the COPY protocol.
type BatchInserter struct {
	txManager *TxManager
}

func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice copies rows into table. It must run inside a transaction
// so the copied rows commit or roll back with the rest of the operation.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, errNoTx
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// BatchExecutor sends several statements in one round trip.
type BatchExecutor struct {
	txManager *TxManager
}

func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// BatchQuery is one statement of a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// ExecuteBatch runs queries in order and returns the rows affected by each.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery) ([]int64, error) {
	tx := e.txManager.GetTx(ctx)
	if tx == nil {
		return nil, errNoTx
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	affected := make([]int64, 0, len(queries))
	for i := range queries {
		tag, err := results.Exec()
		if err != nil {
			return affected, fmt.Errorf("batch query %d: %w", i, err)
		}
		affected = append(affected, tag.RowsAffected())
	}
	return affected, nil
}
