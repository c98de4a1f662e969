package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "tudogestao/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences keyed by the first argument.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &mockRow{err: m.err}
	}
	key := args[0].(string)
	m.values[key]++
	return &mockRow{val: m.values[key]}
}

func TestGetNextNumber_Sequential(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()

	num, err := svc.GetNextNumber(ctx, corenumerator.SaleConfig(), "company-a", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "VND-000001", num)

	num, err = svc.GetNextNumber(ctx, corenumerator.SaleConfig(), "company-a", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "VND-000002", num)
}

func TestGetNextNumber_ScopesAreIndependent(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()

	_, err := svc.GetNextNumber(ctx, corenumerator.SaleConfig(), "company-a", time.Now())
	require.NoError(t, err)

	num, err := svc.GetNextNumber(ctx, corenumerator.SaleConfig(), "company-b", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "VND-000001", num)
	assert.Len(t, q.values, 2)
}

func TestGetNextNumber_QuerierError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := NewWithQuerierFunc(func(context.Context) Querier { return q })

	_, err := svc.GetNextNumber(context.Background(), corenumerator.SaleConfig(), "c", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, q.err)
}

func TestGetNextNumber_Uninitialized(t *testing.T) {
	var svc *Service
	_, err := svc.GetNextNumber(context.Background(), corenumerator.SaleConfig(), "c", time.Now())
	assert.Error(t, err)
}
