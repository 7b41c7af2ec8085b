package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationHeader is the header carrying the request correlation id.
const CorrelationHeader = "X-Correlation-Id"

type correlationKey struct{}

// WithCorrelationID returns a context carrying the correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext returns the correlation id carried by ctx,
// or "" if none is attached.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// CorrelationMiddleware attaches a correlation id to every request:
// taken from the inbound header when present, generated otherwise. The
// id is echoed on the response and carried in the request context so
// outbound calls and log lines can pick it up.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(CorrelationHeader)
		if cid == "" {
			cid = uuid.New().String()
		}

		c.Header(CorrelationHeader, cid)
		c.Request = c.Request.WithContext(WithCorrelationID(c.Request.Context(), cid))

		c.Next()
	}
}
