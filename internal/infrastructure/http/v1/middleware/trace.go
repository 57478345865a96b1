package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "swiftpos/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace attaches correlation IDs to the request context. Incoming
// X-Request-ID and X-Trace-ID headers are honored so a gateway can
// correlate its logs with ours; both are echoed back in the response.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext()
		if v := c.GetHeader(HeaderTraceID); v != "" {
			trace.TraceID = v
		}
		if v := c.GetHeader(HeaderRequestID); v != "" {
			trace.RequestID = v
		}
		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), trace))

		// Handlers that only see *gin.Context read these keys.
		c.Set("trace_id", trace.TraceID)
		c.Set("request_id", trace.RequestID)

		c.Header(HeaderTraceID, trace.TraceID)
		c.Header(HeaderRequestID, trace.RequestID)

		c.Next()
	}
}
