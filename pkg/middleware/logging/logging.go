// Package logging emits one structured access-log entry per request.
package logging

import (
	"time"

	"github.com/workshophq/backoffice/pkg/middleware/requestid"
	"github.com/workshophq/backoffice/pkg/observability/logger"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Logging creates middleware that logs method, path, status, and duration
// for every request, correlated by request id.
func Logging(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			entry := log.With(
				"request_id", requestid.FromContext(c.Request().Context()),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status(),
				"duration_ms", duration.Milliseconds(),
			)

			switch {
			case err != nil:
				entry.Error("request failed", "error", err)
			case c.Response().Status() >= 500:
				entry.Error("request completed")
			case c.Response().Status() >= 400:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}

			return err
		}
	}
}
