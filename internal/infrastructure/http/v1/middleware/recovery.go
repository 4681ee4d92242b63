// Package middleware provides HTTP middleware components.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"storeops/internal/infrastructure/http/v1/dto"
	"storeops/pkg/logger"
)

// Recovery recovers from panics and writes the 500 envelope directly: a
// panic unwinds past ErrorHandler before this deferred recover runs, so
// registering the error on the context would leave the client an empty
// 200. Stack traces go to the log, never to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.Fail("internal server error"))
			}
		}()
		c.Next()
	}
}
