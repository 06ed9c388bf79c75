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
	MetricDatasetFreshness = "dataset.data_age_seconds"
	MetricImportLatency    = "amenities.import_latency"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricEvaluationsRun = "business.affordability_evaluations"
	MetricScenariosSaved = "business.scenarios_saved"
)
