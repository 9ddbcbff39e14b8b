package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapdisplay",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapdisplay",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Viewport engine metrics
	FramesTicked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "viewport",
		Name:      "frames_ticked_total",
		Help:      "Total viewport session ticks processed",
	}, []string{"session"})

	FrameTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mapdisplay",
		Subsystem: "viewport",
		Name:      "frame_tick_duration_seconds",
		Help:      "Duration of one viewport tick (trip step + classify + activation)",
		Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
	})

	ActionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "viewport",
		Name:      "actions_applied_total",
		Help:      "Total interpreter/UI actions applied to a viewport",
	}, []string{"type"})

	ActionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "viewport",
		Name:      "actions_rejected_total",
		Help:      "Total actions rejected (unknown type, unresolved station)",
	}, []string{"type"})

	SceneActivations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "scenes",
		Name:      "activations_total",
		Help:      "Total scene activations after hysteresis",
	})

	SceneDeactivations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "scenes",
		Name:      "deactivations_total",
		Help:      "Total scene deactivations after hysteresis",
	})

	CatalogRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "scenes",
		Name:      "catalog_refreshes_total",
		Help:      "Total scene catalog snapshot replacements",
	})

	TripsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "trips",
		Name:      "started_total",
		Help:      "Total camera trips started",
	})

	TripsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "trips",
		Name:      "completed_total",
		Help:      "Total camera trips that reached progress 1.0",
	})

	TripsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "trips",
		Name:      "cancelled_total",
		Help:      "Total camera trips stopped before completion",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapdisplay",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapdisplay",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
