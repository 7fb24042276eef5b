package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"labgate.app/gateway/common/id"
	"labgate.app/gateway/common/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with a snowflake id, echoed in the response
// header and attached to the context so every log line carries it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := id.New()
		c.Header(requestIDHeader, strconv.FormatInt(requestID, 10))

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
			RequestID: logger.Ptr(requestID),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
