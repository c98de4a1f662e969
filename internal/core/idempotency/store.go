// Package idempotency defines the store behind the X-Idempotency-Key header.
package idempotency

import (
	"context"
	"time"
)

// DefaultTTL is how long a completed key replays its response.
const DefaultTTL = 24 * time.Hour

// Replay is a stored HTTP response returned for a repeated request.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store records the outcome of requests carrying an idempotency key.
type Store interface {
	// AcquireKey claims key for a request. It returns (nil, nil) when the
	// caller should process the request, a Replay when the request already
	// completed, and an Idempotency AppError when the key is in flight or
	// was used for a different request.
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*Replay, error)

	// CompleteKey stores a successful response.
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error

	// FailKey stores an error response.
	FailKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error
}
