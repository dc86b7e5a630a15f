package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey = "request_id"
)

// RequestID reuses an incoming X-Request-ID or generates one, stores it on
// the gin context and echoes it in the response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		c.Set(requestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestIDFromGinContext returns the request id, or "" outside RequestID
func GetRequestIDFromGinContext(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
