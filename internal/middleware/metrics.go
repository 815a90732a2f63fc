package middleware

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/metrics"
)

// RequestMetrics records method, route template, status and latency of
// every request.
func RequestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Request(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
