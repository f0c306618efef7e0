package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reai-platform/core/core"
)

func TestCircuitBreakerOpensAfterVolumeAndErrorThreshold(t *testing.T) {
	config := DefaultConfig()
	config.Name = "llmgateway-openai"
	config.VolumeThreshold = 4
	config.ErrorThreshold = 0.5
	config.WindowSize = time.Minute
	config.BucketCount = 6

	cb, err := NewCircuitBreaker(config)
	if err != nil {
		t.Fatalf("NewCircuitBreaker: %v", err)
	}

	failing := errors.New("upstream unavailable")
	for i := 0; i < 4; i++ {
		_ = cb.Execute(context.Background(), func() error { return failing })
	}

	if cb.GetState() != "open" {
		t.Fatalf("expected circuit open after repeated failures, got %s", cb.GetState())
	}

	err = cb.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, core.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen while open, got %v", err)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	config := DefaultConfig()
	config.Name = "retrieval-vector-store"
	config.VolumeThreshold = 1
	config.ErrorThreshold = 0.1
	config.SleepWindow = 10 * time.Millisecond
	config.HalfOpenRequests = 2
	config.SuccessThreshold = 0.5

	cb, err := NewCircuitBreaker(config)
	if err != nil {
		t.Fatalf("NewCircuitBreaker: %v", err)
	}

	_ = cb.Execute(context.Background(), func() error { return errors.New("boom") })
	if cb.GetState() != "open" {
		t.Fatalf("expected open, got %s", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func() error { return nil })
	}

	if cb.GetState() != "closed" {
		t.Errorf("expected recovery to closed after successful half-open probes, got %s", cb.GetState())
	}
}

func TestDefaultErrorClassifierIgnoresUserErrors(t *testing.T) {
	cfgErr := core.NewTaxonomyError("invalid_request", "registry.Register", core.ErrInvalidConfiguration)
	if DefaultErrorClassifier(cfgErr) {
		t.Error("configuration errors should not count toward circuit breaker failures")
	}

	notFound := core.NewTaxonomyError("not_found", "registry.Lookup", core.ErrServiceNotFound)
	if DefaultErrorClassifier(notFound) {
		t.Error("not-found errors should not count toward circuit breaker failures")
	}

	if DefaultErrorClassifier(context.Canceled) {
		t.Error("client cancellation should not count toward circuit breaker failures")
	}

	if !DefaultErrorClassifier(core.ErrProviderUnavailable) {
		t.Error("infrastructure errors should count toward circuit breaker failures")
	}
}

func TestForceOpenAndClearForce(t *testing.T) {
	config := DefaultConfig()
	config.Name = "forced"
	cb, _ := NewCircuitBreaker(config)

	cb.ForceOpen()
	if cb.GetState() != "open" {
		t.Fatalf("expected forced open, got %s", cb.GetState())
	}

	err := cb.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, core.ErrCircuitOpen) {
		t.Errorf("expected rejection while force-open, got %v", err)
	}

	cb.ClearForce()
	cb.Reset()
	if cb.GetState() != "closed" {
		t.Errorf("expected closed after reset, got %s", cb.GetState())
	}
}
