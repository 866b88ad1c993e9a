package telemetry

// SLI metric names used for instrumentation dashboards.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricZoneDataAge    = "parking.zone_data_age_seconds"
	MetricAlertFreshness = "parking.alert_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricLegalityChecks = "business.legality_checks"
	MetricAlertReports   = "business.alert_reports"
)
