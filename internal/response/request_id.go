package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key under which the request ID is
// stored for the response envelope.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an ID for log correlation.
// An inbound X-Request-ID is honored so callers can trace their own requests;
// otherwise a fresh UUID is issued. The ID is echoed back in the response
// header and in the envelope metadata.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
