// Package middleware holds the Gin middleware stack of the backend:
// panic recovery, request IDs, CORS for the browser frontend, upload
// size limiting and request logging.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sitzungslab/minutes/logger"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-Id"

// Recovery recovers from handler panics, logs the stack and answers
// with the backend's uniform error envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered", map[string]interface{}{
					"error":     fmt.Sprintf("%v", err),
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": c.ClientIP(),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"detail": "Interner Serverfehler",
				})
			}
		}()
		c.Next()
	}
}

// RequestID assigns every request a correlation id, reusing one the
// client already sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
