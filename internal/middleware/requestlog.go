package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gx-tools/task-tracker/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an ID and logs method, path, status
// and latency once the handler chain finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if id, ok := IdentityFromContext(c.Request.Context()); ok {
			fields["user_id"] = id.ID
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("http request", fields)
		case status >= 400:
			logger.Warn("http request", fields)
		default:
			logger.Info("http request", fields)
		}
	}
}
