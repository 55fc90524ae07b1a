package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ha1tch/reseau/pkg/metrics"
)

// RegisterRoutes mounts the session API, /health and optionally /metrics.
func RegisterRoutes(e *echo.Echo, reg *metrics.Registry, exposeMetrics bool) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	if exposeMetrics && reg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{})))
	}

	// Session routes
	sessions := e.Group("/sessions")
	sessions.POST("", CreateSessionHandler)
	sessions.DELETE("/:id", DeleteSessionHandler)
	sessions.GET("/:id/state", GetStateHandler)

	// Event routes
	sessions.POST("/:id/pointer", PointerHandler)
	sessions.POST("/:id/touch", TouchHandler)
	sessions.POST("/:id/view", ViewHandler)
}
