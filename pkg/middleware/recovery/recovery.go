// Package recovery converts handler panics into HTTP 500 responses.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/workshophq/backoffice/pkg/middleware/requestid"
	"github.com/workshophq/backoffice/pkg/observability/logger"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Recovery creates middleware that recovers from panics, logs the stack
// trace, and returns a generic 500 without leaking internals.
func Recovery(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			defer func() {
				if r := recover(); r != nil {
					requestID := requestid.FromContext(c.Request().Context())
					log.Error("panic recovered",
						"request_id", requestID,
						"panic", r,
						"stack", string(debug.Stack()),
					)

					if !c.Response().Written() {
						body := map[string]any{
							"success": false,
							"message": "an unexpected error occurred",
						}
						if err := c.JSON(http.StatusInternalServerError, body); err != nil {
							log.Error("failed to send error response",
								"request_id", requestID,
								"error", err,
							)
						}
					}
				}
			}()

			return next(c)
		}
	}
}
