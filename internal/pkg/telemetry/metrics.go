package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Frame loop health
	MetricFrameTickBudget = "viewport.frame_tick_budget"
	MetricFrameTickP99    = "viewport.frame_tick_p99"

	// Data freshness
	MetricCatalogAge = "scenes.catalog_age_seconds"
)
