package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	appctx "tudogestao/internal/core/context"
	"tudogestao/internal/core/id"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

const maxCorrelationIDLen = 128

var traceparent = propagation.TraceContext{}

// Trace assigns request and trace ids and echoes them back.
// A W3C traceparent header wins over X-Trace-ID, and the remote span is kept
// in the context so transaction spans join the caller's trace.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := traceparent.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		requestID := correlationID(c.GetHeader(HeaderRequestID))

		var traceID string
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			traceID = sc.TraceID().String()
		} else {
			traceID = correlationID(c.GetHeader(HeaderTraceID))
		}

		ctx = appctx.WithTrace(ctx, &appctx.TraceContext{
			TraceID:   traceID,
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}

// correlationID keeps a client supplied id that is safe to log and echo,
// and generates one otherwise.
func correlationID(v string) string {
	if v == "" || len(v) > maxCorrelationIDLen {
		return id.New().String()
	}
	for i := 0; i < len(v); i++ {
		if v[i] <= ' ' || v[i] > '~' {
			return id.New().String()
		}
	}
	return v
}
