// Package metrics records Prometheus metrics for every request.
package metrics

import (
	"time"

	"github.com/workshophq/backoffice/pkg/observability/metrics"
	"github.com/workshophq/backoffice/pkg/server/router"
)

// Metrics creates middleware that records request duration, a request
// counter, and an in-flight gauge for each handled request.
func Metrics() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			metrics.IncrementInFlight()
			defer metrics.DecrementInFlight()

			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			metrics.RecordHTTPMetrics(
				c.Request().Method,
				c.Request().URL.Path,
				c.Response().Status(),
				duration,
			)

			return err
		}
	}
}
