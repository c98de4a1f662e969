// Package tx defines the transaction boundary used by domain services.
// Implementations live in infrastructure/storage (postgres and memory).
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back,
	// otherwise it is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
