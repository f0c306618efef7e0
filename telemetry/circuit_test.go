package telemetry

import (
	"testing"
	"time"
)

func TestTelemetryCircuitBreakerTripsAfterMaxFailures(t *testing.T) {
	cb := NewTelemetryCircuitBreaker(CircuitConfig{Enabled: true, MaxFailures: 3, RecoveryTime: time.Hour, HalfOpenMax: 2})

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
	}
	if cb.State() != "closed" {
		t.Fatalf("expected closed before threshold, got %s", cb.State())
	}

	cb.RecordFailure()
	if cb.State() != "open" {
		t.Fatalf("expected open after threshold, got %s", cb.State())
	}
	if cb.Allow() {
		t.Fatal("expected Allow to return false while open and recovery time not elapsed")
	}
}

func TestTelemetryCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewTelemetryCircuitBreaker(CircuitConfig{Enabled: true, MaxFailures: 1, RecoveryTime: time.Millisecond, HalfOpenMax: 2})

	cb.RecordFailure()
	if cb.State() != "open" {
		t.Fatalf("expected open, got %s", cb.State())
	}

	time.Sleep(5 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("expected Allow to admit a probe once recovery time has elapsed")
	}
	if cb.State() != "half-open" {
		t.Fatalf("expected half-open, got %s", cb.State())
	}

	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.State() != "closed" {
		t.Fatalf("expected closed after HalfOpenMax successes, got %s", cb.State())
	}
}

func TestTelemetryCircuitBreakerNilIsAlwaysOpenForBusiness(t *testing.T) {
	var cb *TelemetryCircuitBreaker
	if !cb.Allow() {
		t.Fatal("nil breaker should always allow")
	}
	if cb.State() != "disabled" {
		t.Fatalf("expected disabled, got %s", cb.State())
	}
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.Reset()
}

func TestNewTelemetryCircuitBreakerDisabledReturnsNil(t *testing.T) {
	cb := NewTelemetryCircuitBreaker(CircuitConfig{Enabled: false})
	if cb != nil {
		t.Fatal("expected nil breaker when disabled")
	}
}
