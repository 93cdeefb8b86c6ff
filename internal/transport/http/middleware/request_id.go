package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appLogger "github.com/arklim/realmeye-identity/internal/infra/logger"
)

const (
	requestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin context key handlers read the correlation id
	// from while the request is in flight.
	RequestIDKey = "request_id"
)

// RequestID assigns every request a correlation identifier. A caller-supplied
// X-Request-ID is honored only when it is a well-formed UUID; anything else is
// replaced so log correlation cannot be poisoned by arbitrary header values.
// The id is echoed back in the response header and stored both on the request
// context and in the gin context before the handler chain runs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		c.Set(RequestIDKey, reqID)
		ctx := context.WithValue(c.Request.Context(), appLogger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
