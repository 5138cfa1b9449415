// Package requestid assigns a correlation id to every request.
package requestid

import (
	"context"

	"github.com/google/uuid"

	"github.com/workshophq/backoffice/pkg/middleware"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Header is the HTTP header carrying the request id.
const Header = "X-Request-ID"

// RequestID creates middleware that extracts the request id from the
// incoming header or generates a new UUID, then propagates it through the
// request context and the response header.
func RequestID() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			requestID := c.Request().Header.Get(Header)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Set(string(middleware.RequestIDKey), requestID)
			c.Response().Header().Set(Header, requestID)

			ctx := context.WithValue(c.Request().Context(), middleware.RequestIDKey, requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// FromContext extracts the request id from a context, or returns "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
