// Package metrics exposes Prometheus instrumentation for the HTTP API
// and the graph store. Metrics are registered on the default registry
// and served at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/orgmesh/orgkb/pkg/apperror"
)

var (
	// HTTP request metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orgkb_http_requests_total",
		Help: "Total number of HTTP requests processed",
	}, []string{"method", "path", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orgkb_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Graph store metrics
	EntitiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orgkb_entities_written_total",
		Help: "Total number of entity writes by kind and operation",
	}, []string{"kind", "op"})

	RelationshipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orgkb_relationships_written_total",
		Help: "Total number of relationship writes by type and operation",
	}, []string{"type", "op"})

	CascadeDeletedEdges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orgkb_cascade_deleted_edges_total",
		Help: "Total number of relationships removed by entity cascade deletes",
	})
)

// Module registers the Echo instrumentation middleware and the /metrics route.
var Module = fx.Module("metrics",
	fx.Invoke(RegisterMiddleware),
	fx.Invoke(RegisterRoutes),
)

// RegisterMiddleware records per-request counters and latency histograms.
// The route template (not the raw URL) is used as the path label to keep
// cardinality bounded.
func RegisterMiddleware(e *echo.Echo) {
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unknown"
			}
			method := c.Request().Method
			status := c.Response().Status
			if err != nil {
				switch e := err.(type) {
				case *apperror.Error:
					status = e.HTTPStatus
				case *echo.HTTPError:
					status = e.Code
				default:
					status = 500
				}
			}

			RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	})
}

// RegisterRoutes exposes the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
