package postgres

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/idempotency"
)

type idempotencyStatus string

const (
	idempotencyPending idempotencyStatus = "pending"
	idempotencySuccess idempotencyStatus = "success"
	idempotencyFailed  idempotencyStatus = "failed"
)

// staleAfter is how long a pending key may stay unfinished before another
// request may reclaim it (the first request most likely crashed).
const staleAfter = time.Minute

var _ idempotency.Store = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in sys_idempotency.
// Writes go through the pool, outside any business transaction, so a
// rolled back request still records its error response.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
}

func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}
	return &IdempotencyStore{txManager: txManager, ttl: ttl}
}

// AcquireKey implements idempotency.Store.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*idempotency.Replay, error) {
	now := time.Now().UTC()

	var (
		inserted    bool
		storedUser  string
		storedOp    string
		storedHash  string
		status      idempotencyStatus
		response    []byte
		statusCode  *int
		contentType *string
		updatedAt   time.Time
	)
	// xmax = 0 only for a row inserted by this statement
	err := s.txManager.pool.QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (idempotency_key) DO UPDATE SET expires_at = sys_idempotency.expires_at
		RETURNING (xmax = 0), user_id, operation, request_hash, status, response, response_status, response_content_type, updated_at
	`, key, userID, operation, idempotencyPending, requestHash, now, now.Add(s.ttl)).Scan(
		&inserted, &storedUser, &storedOp, &storedHash, &status, &response, &statusCode, &contentType, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if inserted {
		return nil, nil
	}

	if storedUser != userID || storedOp != operation || storedHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("operation", operation)
	}

	switch status {
	case idempotencySuccess, idempotencyFailed:
		replay := &idempotency.Replay{StatusCode: http.StatusOK, ContentType: "application/json", Body: response}
		if statusCode != nil && *statusCode != 0 {
			replay.StatusCode = *statusCode
		}
		if contentType != nil {
			replay.ContentType = *contentType
		}
		return replay, nil
	}

	if now.Sub(updatedAt) < staleAfter {
		return nil, apperror.NewIdempotencyConflict(key)
	}

	tag, err := s.txManager.pool.Exec(ctx, `
		UPDATE sys_idempotency SET updated_at = $1
		WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
	`, now, key, idempotencyPending, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("reclaim stale key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return nil, nil
}

// CompleteKey implements idempotency.Store.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error {
	return s.finish(ctx, key, idempotencySuccess, statusCode, contentType, body)
}

// FailKey implements idempotency.Store.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error {
	return s.finish(ctx, key, idempotencyFailed, statusCode, contentType, body)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status idempotencyStatus, statusCode int, contentType string, body []byte) error {
	_, err := s.txManager.pool.Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, response = $2, response_status = $3, response_content_type = $4, updated_at = $5
		WHERE idempotency_key = $6
	`, status, body, statusCode, contentType, time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("finish idempotency key: %w", err)
	}
	return nil
}

// CleanupExpired removes expired keys. The worker calls it periodically.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.txManager.pool.Exec(ctx, `DELETE FROM sys_idempotency WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
