// Package middleware holds the gin middleware chain: panic recovery,
// tracing, request logging, error rendering and auth.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"swiftpos/internal/core/apperror"
	"swiftpos/pkg/logger"
)

// Recovery converts panics into a 500 response. The stack trace goes to
// the log only, never to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", r,
					"stack", string(debug.Stack()),
				)

				appErr := apperror.NewInternal(fmt.Errorf("panic: %v", r)).
					WithDetail("request_id", c.GetString("request_id"))
				_ = c.Error(appErr)
				c.Abort()
			}
		}()
		c.Next()
	}
}
