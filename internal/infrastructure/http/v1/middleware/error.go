package middleware

import (
	"github.com/gin-gonic/gin"

	"storeops/internal/core/apperror"
	"storeops/internal/infrastructure/http/v1/dto"
	"storeops/pkg/logger"
)

// ErrorHandler is the single place errors become HTTP responses. Handlers
// register errors on the Gin context and abort; this middleware maps them
// to the response envelope. Internal causes are logged, never exposed.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if c.Writer.Written() {
			return
		}

		status := apperror.GetHTTPStatus(err)
		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			c.JSON(status, dto.Fail(appErr.Message))
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)
		c.JSON(status, dto.Fail("internal server error"))
	}
}
