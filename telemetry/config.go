package telemetry

import "time"

// Config configures the telemetry registry.
type Config struct {
	ServiceName      string
	Endpoint         string
	CardinalityLimit int
	CardinalityLimits map[string]int // per-label limits

	CircuitBreaker CircuitConfig
}

// CircuitConfig configures the self-protection circuit breaker that
// guards the metrics backend itself (see circuit.go).
type CircuitConfig struct {
	Enabled      bool
	MaxFailures  int
	RecoveryTime time.Duration
	HalfOpenMax  int
}
