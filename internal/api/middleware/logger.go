package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mining-dispatch/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// Logger tags every request with an id, stores a request-scoped logger in the
// request context and logs one line per request.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		reqLog := log.With(logger.StringField("request_id", id))
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		entry := reqLog.With(
			logger.StringField("method", c.Request.Method),
			logger.StringField("path", c.Request.URL.Path),
			logger.IntField("status", status),
			logger.DurationField("latency", time.Since(start)),
			logger.StringField("client_ip", c.ClientIP()),
		)
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
