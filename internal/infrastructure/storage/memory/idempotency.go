package memory

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/idempotency"
)

type idempotencyRecord struct {
	userID      string
	operation   string
	requestHash string
	done        bool
	replay      idempotency.Replay
	expiresAt   time.Time
}

var _ idempotency.Store = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in memory until they expire.
type IdempotencyStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]*idempotencyRecord
	now  func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}
	return &IdempotencyStore{ttl: ttl, keys: make(map[string]*idempotencyRecord), now: time.Now}
}

func (s *IdempotencyStore) AcquireKey(_ context.Context, key, userID, operation, requestHash string) (*idempotency.Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.keys[key]
	if !ok || now.After(rec.expiresAt) {
		s.keys[key] = &idempotencyRecord{
			userID:      userID,
			operation:   operation,
			requestHash: requestHash,
			expiresAt:   now.Add(s.ttl),
		}
		return nil, nil
	}

	if rec.userID != userID || rec.operation != operation || rec.requestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).WithDetail("operation", operation)
	}
	if !rec.done {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	replay := rec.replay
	return &replay, nil
}

func (s *IdempotencyStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, body []byte) error {
	s.finish(key, statusCode, contentType, body)
	return nil
}

func (s *IdempotencyStore) FailKey(_ context.Context, key string, statusCode int, contentType string, body []byte) error {
	s.finish(key, statusCode, contentType, body)
	return nil
}

func (s *IdempotencyStore) finish(key string, statusCode int, contentType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.keys[key]
	if !ok {
		return
	}
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rec.done = true
	rec.replay = idempotency.Replay{
		StatusCode:  statusCode,
		ContentType: contentType,
		Body:        append([]byte(nil), body...),
	}
}
