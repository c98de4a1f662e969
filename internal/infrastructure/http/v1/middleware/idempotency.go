package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tudogestao/internal/core/apperror"
	appctx "tudogestao/internal/core/context"
	"tudogestao/internal/core/idempotency"
	"tudogestao/pkg/logger"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

const maxIdempotencyBodyBytes = 1 << 20

const (
	idempotencyKeyCtx   = "idempotency_key"
	idempotencyStoreCtx = "idempotency_store"
)

// Idempotency replays the stored response of a mutating request that
// repeats its X-Idempotency-Key. Requests without the header pass through.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1))
		if err != nil {
			_ = c.Error(apperror.NewValidation("cannot read request body"))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(append([]byte(c.Request.URL.Path+"\n"), body...))
		requestHash := hex.EncodeToString(hash[:])
		operation := c.Request.Method + " " + c.FullPath()
		ctx := c.Request.Context()

		replay, err := store.AcquireKey(ctx, key, appctx.GetUserID(ctx), operation, requestHash)
		if err != nil {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewInternal(err).WithDetail("component", "idempotency")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(idempotencyKeyCtx, key)
		c.Set(idempotencyStoreCtx, store)

		c.Next()
	}
}

// CompleteIdempotency stores a successful response for replay. Handlers call
// it right before writing the response.
func CompleteIdempotency(c *gin.Context, status int, body []byte) {
	key := c.GetString(idempotencyKeyCtx)
	store, ok := c.Value(idempotencyStoreCtx).(idempotency.Store)
	if key == "" || !ok {
		return
	}
	if err := store.CompleteKey(c.Request.Context(), key, status, "application/json; charset=utf-8", body); err != nil {
		logger.Warn(c.Request.Context(), "record idempotency response", "key", key, "error", err)
	}
}
