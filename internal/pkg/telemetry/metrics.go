package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricSnapshotAge    = "map.snapshot_age_seconds"
	MetricReadingLatency = "readings.ingest_latency"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricMarkersLive  = "business.markers_live"
	MetricPopupsOpened = "business.popups_opened"
)
