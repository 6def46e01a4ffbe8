package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sensevoice-asr/internal/api/errors"
)

// ErrorHandler recovers panics into the standard {"error": ...} response.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		var apiErr *errors.APIError
		switch v := recovered.(type) {
		case *errors.APIError:
			apiErr = v
		case error:
			logger.Error("panic while handling request",
				zap.Error(v),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Stack("stack"))
			apiErr = errors.NewInternalError("internal server error")
		default:
			logger.Error("panic while handling request",
				zap.String("recovered", fmt.Sprint(recovered)),
				zap.String("request_id", requestID),
				zap.Stack("stack"))
			apiErr = errors.NewInternalError("internal server error")
		}

		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr.Response())
	})
}

// HandleError writes err as the standard error response and records it on the
// gin context for the access log.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := errors.FromError(err)
	apiErr.RequestID = c.GetString(RequestIDKey)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr.Response())
}
