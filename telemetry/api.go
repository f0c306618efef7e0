package telemetry

// Counter increments a named counter metric by 1, tagged with the given
// label pairs (e.g. Counter("resilience.circuit_breaker.success",
// "provider", "openai")). A silent no-op before Initialize has run.
func Counter(name string, labels ...string) {
	Emit(name, 1, labels...)
}

// Gauge records an instantaneous value for a named metric.
func Gauge(name string, value float64, labels ...string) {
	Emit(name, value, labels...)
}

// Histogram records a sample (typically a duration in seconds or a size)
// into a named metric's distribution.
func Histogram(name string, value float64, labels ...string) {
	Emit(name, value, labels...)
}
