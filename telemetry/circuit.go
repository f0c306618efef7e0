package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// TelemetryCircuitBreaker protects the metrics backend from overload: once
// a run of failures trips it, metric emission is dropped instead of
// piling up retries against a collector that is already down.
type TelemetryCircuitBreaker struct {
	config CircuitConfig

	state           atomic.Value // string: "closed", "open", "half-open"
	failures        atomic.Int64
	successes       atomic.Int64
	lastFailureTime atomic.Value // time.Time

	mu sync.Mutex
}

func NewTelemetryCircuitBreaker(config CircuitConfig) *TelemetryCircuitBreaker {
	if !config.Enabled {
		return nil
	}

	if config.MaxFailures == 0 {
		config.MaxFailures = 10
	}
	if config.RecoveryTime == 0 {
		config.RecoveryTime = 30 * time.Second
	}
	if config.HalfOpenMax == 0 {
		config.HalfOpenMax = 5
	}

	cb := &TelemetryCircuitBreaker{config: config}
	cb.state.Store("closed")
	cb.lastFailureTime.Store(time.Time{})
	return cb
}

// Allow reports whether a metric emission should proceed given the
// breaker's current state. A nil breaker (disabled) always allows.
func (cb *TelemetryCircuitBreaker) Allow() bool {
	if cb == nil {
		return true
	}

	switch cb.State() {
	case "open":
		lastFailureVal := cb.lastFailureTime.Load()
		lastFailure, ok := lastFailureVal.(time.Time)
		if !ok || lastFailure.IsZero() || time.Since(lastFailure) <= cb.config.RecoveryTime {
			return false
		}

		cb.mu.Lock()
		if cb.state.Load().(string) == "open" {
			cb.state.Store("half-open")
			cb.successes.Store(0)
			GetLogger().Info("telemetry circuit breaker entering half-open", map[string]interface{}{
				"recovery_wait": cb.config.RecoveryTime.String(),
			})
		}
		cb.mu.Unlock()
		return true

	case "half-open":
		return cb.successes.Load() < int64(cb.config.HalfOpenMax)

	default: // closed
		return true
	}
}

// RecordSuccess advances a half-open breaker toward closed, or resets
// the failure count while already closed.
func (cb *TelemetryCircuitBreaker) RecordSuccess() {
	if cb == nil {
		return
	}

	cb.successes.Add(1)
	switch cb.State() {
	case "half-open":
		if cb.successes.Load() >= int64(cb.config.HalfOpenMax) {
			cb.mu.Lock()
			if cb.state.Load().(string) == "half-open" {
				cb.state.Store("closed")
				cb.failures.Store(0)
				GetLogger().Info("telemetry circuit breaker closed, metrics resumed", nil)
			}
			cb.mu.Unlock()
		}
	case "closed":
		cb.failures.Store(0)
	}
}

// RecordFailure trips the breaker open once MaxFailures is reached.
func (cb *TelemetryCircuitBreaker) RecordFailure() {
	if cb == nil {
		return
	}

	failures := cb.failures.Add(1)
	cb.lastFailureTime.Store(time.Now())

	if failures >= int64(cb.config.MaxFailures) {
		cb.mu.Lock()
		if cb.state.Load().(string) != "open" {
			cb.state.Store("open")
			cb.successes.Store(0)
			GetLogger().Warn("telemetry circuit breaker opened, metrics will be dropped", map[string]interface{}{
				"failure_count": failures,
				"recovery_time": cb.config.RecoveryTime.String(),
			})
		}
		cb.mu.Unlock()
	}
}

func (cb *TelemetryCircuitBreaker) State() string {
	if cb == nil {
		return "disabled"
	}
	return cb.state.Load().(string)
}

func (cb *TelemetryCircuitBreaker) Reset() {
	if cb == nil {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state.Store("closed")
	cb.failures.Store(0)
	cb.successes.Store(0)
	cb.lastFailureTime.Store(time.Time{})
}
