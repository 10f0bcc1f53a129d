package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs each HTTP request with method, path, status, error count, and
// latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		requestID, _ := c.Get("request_id")
		if n := len(c.Errors); n > 0 {
			log.Printf("[%s] %s %s %d %s (%d errors: %s)",
				requestID, c.Request.Method, c.Request.URL.Path,
				c.Writer.Status(), latency, n, c.Errors.String())
			return
		}
		log.Printf("[%s] %s %s %d %s",
			requestID, c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), latency)
	}
}

// Recovery turns a handler panic into a 500 response, logged under the
// request id so the log line and the client-visible X-Request-ID correlate.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Get("request_id")
				log.Printf("[%s] panic recovered: %v", requestID, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "an internal error occurred",
					},
				})
			}
		}()
		c.Next()
	}
}
