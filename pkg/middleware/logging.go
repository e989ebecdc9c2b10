package middleware

import (
	"time"

	"unievent/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one line per request, after the rest of the chain
// has run.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		caller := c.GetString(subjectKey)
		if caller == "" {
			caller = "anonymous"
		}

		status := c.Writer.Status()
		fields := log.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"principal", caller,
		)
		switch {
		case status >= 500:
			fields.Error("request completed")
		case status >= 400:
			fields.Warn("request completed")
		default:
			fields.Info("request completed")
		}
	}
}
