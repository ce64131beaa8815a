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
		Namespace: "recycleheat",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recycleheat",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recycleheat",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Map core metrics
	MarkersReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recycleheat",
		Subsystem: "map",
		Name:      "markers_created_total",
		Help:      "Total marker handles created by reconciliation",
	})

	MarkersLive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "recycleheat",
		Subsystem: "map",
		Name:      "markers_live",
		Help:      "Marker handles currently attached to a surface",
	})

	PopupsOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycleheat",
		Subsystem: "map",
		Name:      "popups_opened_total",
		Help:      "Total popups opened, by site variant",
	}, []string{"kind"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "recycleheat",
		Subsystem: "map",
		Name:      "sessions_active",
		Help:      "Map sessions currently connected",
	})

	SnapshotRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycleheat",
		Subsystem: "map",
		Name:      "snapshot_refreshes_total",
		Help:      "Dataset refresh attempts by result",
	}, []string{"result"})

	// Readings pipeline
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycleheat",
		Subsystem: "readings",
		Name:      "ingested_total",
		Help:      "Total site readings ingested from the broker",
	}, []string{"kind"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycleheat",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recycleheat",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "recycleheat",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "recycleheat",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
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

// UpdateDBPoolMetrics copies pgx pool stats into the pool gauges. Takes a
// narrow interface so this package stays free of a pgxpool import.
func UpdateDBPoolMetrics(stat interface {
	AcquiredConns() int32
	IdleConns() int32
}) {
	DBPoolConnsAcquired.Set(float64(stat.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(stat.IdleConns()))
}
