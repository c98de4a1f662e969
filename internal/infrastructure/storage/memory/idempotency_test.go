package memory

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tudogestao/internal/core/apperror"
)

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)

	replay, err := s.AcquireKey(ctx, "k1", "u1", "POST /sales", "hash")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = s.AcquireKey(ctx, "k1", "u1", "POST /sales", "hash")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))

	require.NoError(t, s.CompleteKey(ctx, "k1", http.StatusCreated, "application/json", []byte(`{"number":"VND-000001"}`)))

	replay, err = s.AcquireKey(ctx, "k1", "u1", "POST /sales", "hash")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, http.StatusCreated, replay.StatusCode)
	assert.JSONEq(t, `{"number":"VND-000001"}`, string(replay.Body))
}

func TestIdempotencyStore_DifferentRequest(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)

	_, err := s.AcquireKey(ctx, "k1", "u1", "POST /sales", "hash-a")
	require.NoError(t, err)

	_, err = s.AcquireKey(ctx, "k1", "u1", "POST /sales", "hash-b")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))
}

func TestIdempotencyStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	_, err := s.AcquireKey(ctx, "k1", "u1", "POST /sales", "hash")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	replay, err := s.AcquireKey(ctx, "k1", "u1", "POST /sales", "other")
	require.NoError(t, err)
	assert.Nil(t, replay)
}
