package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"swiftpos/pkg/logger"
)

// Logger writes one structured line per request after the handler chain
// finishes. Trace and user fields come from the context via WithContext.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery

		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(started).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if rawQuery != "" {
			fields = append(fields, "query", rawQuery)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.Errors())
		}

		log.WithContext(c.Request.Context()).Infow("http request", fields...)
	}
}
