package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/idempotency"
	"tudogestao/pkg/logger"
)

// ErrorHandler writes the error registered by a handler as
// {"error", "code", "details"}. Internal causes are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c)
	}
}

func writeError(c *gin.Context) {
	if c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err
	ctx := c.Request.Context()

	status := http.StatusInternalServerError
	body := gin.H{
		"error":   "Internal server error",
		"code":    apperror.CodeInternal,
		"details": gin.H{"request_id": c.GetString("request_id")},
	}

	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code != apperror.CodeInternal {
		if appErr.Err != nil {
			logger.Warn(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
		}
		status = appErr.HTTPStatus
		details := appErr.Details
		if details == nil {
			details = map[string]any{}
		}
		body = gin.H{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": details,
		}
	} else {
		logger.Error(ctx, "unhandled error", "error", err)
	}

	failIdempotencyKey(c, status, body)
	c.JSON(status, body)
}

// failIdempotencyKey stores the error response so a retry with the same key
// replays it.
func failIdempotencyKey(c *gin.Context, status int, body gin.H) {
	key := c.GetString(idempotencyKeyCtx)
	store, ok := c.Value(idempotencyStoreCtx).(idempotency.Store)
	if key == "" || !ok {
		return
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := store.FailKey(c.Request.Context(), key, status, "application/json; charset=utf-8", raw); err != nil {
		logger.Warn(c.Request.Context(), "record idempotency failure", "key", key, "error", err)
	}
}
