package metrics

import (
	"context"
	"net/http"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether one backing store is reachable.
type Check func(ctx context.Context) error

type healthReport struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// RegisterEndpoints mounts /metrics and /health on the root router.
func RegisterEndpoints(e *echo.Echo, version string, checks map[string]Check) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", healthHandler(version, checks))
}

func healthHandler(version string, checks map[string]Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		report := healthReport{
			Status:  "ok",
			Version: version,
			Checks:  make(map[string]string, len(checks)),
		}

		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				report.Checks[name] = err.Error()
				report.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			report.Checks[name] = "ok"
		}

		return c.JSON(status, jsonres.Success("Service health", report))
	}
}
