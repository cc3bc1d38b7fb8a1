package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitzungslab/minutes/logger"
)

// slowThreshold flags requests worth a second look. Summarization and
// uploads legitimately take longer and are excluded below.
const slowThreshold = 2 * time.Second

// slowExempt lists route prefixes that block on an LLM or a large
// upload and are slow by nature.
var slowExempt = []string{"/api/summarize", "/api/extract-tops", "/api/transcribe"}

// GinRequestLogger logs every request with method, path, status and
// latency. Health probes are skipped to keep the log readable.
func GinRequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": latency.String(),
			"client":  c.ClientIP(),
		}
		if id := c.GetString("request_id"); id != "" {
			fields["request_id"] = id
		}
		if status >= 500 {
			fields["size"] = c.Writer.Size()
		}
		if latency > slowThreshold && !isSlowExempt(c.Request.URL.Path) {
			fields["slow"] = true
		}

		switch {
		case status >= 500:
			logger.Error("Request completed", fields)
		case status >= 400:
			logger.Warn("Request completed", fields)
		default:
			logger.Debug("Request completed", fields)
		}
	}
}

func isSlowExempt(path string) bool {
	for _, prefix := range slowExempt {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
