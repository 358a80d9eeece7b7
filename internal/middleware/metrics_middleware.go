package middleware

import (
	"misikaMarket/pkg/metrics"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestMetrics records handler latency by matched route, so path
// parameters do not explode label cardinality.
func RequestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// render errors here so the recorded status is the final one
			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())

			return nil
		}
	}
}
