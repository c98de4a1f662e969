// Package numerator provides the PostgreSQL implementation of document auto-numbering.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "tudogestao/internal/core/numerator"
)

// Querier is the subset of pgx used by the service.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call. With a TxManager it returns
// the active transaction, so the allocation commits or rolls back with it.
type QuerierFunc func(ctx context.Context) Querier

// Service allocates numbers from sys_sequences with UPSERT ... RETURNING.
// The upserted row stays locked until the surrounding transaction ends,
// which serializes concurrent allocations for the same key.
type Service struct {
	querier QuerierFunc
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a service bound to a single querier. Use for tests.
func New(q Querier) *Service {
	return &Service{querier: func(context.Context) Querier { return q }}
}

// NewWithQuerierFunc creates a service that resolves its querier per call.
func NewWithQuerierFunc(fn QuerierFunc) *Service {
	return &Service{querier: fn}
}

// GetNextNumber implements corenumerator.Generator.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, scope string, period time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := corenumerator.Key(cfg, scope, period)

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number %s: %w", key, err)
	}

	return corenumerator.Format(cfg, period, num), nil
}
