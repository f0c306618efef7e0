package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reai-platform/core/core"
)

func TestRetrySucceedsBeforeExhaustingAttempts(t *testing.T) {
	config := &RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, BackoffFactor: 2}

	attempts := 0
	err := Retry(context.Background(), config, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	config := &RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}

	attempts := 0
	err := Retry(context.Background(), config, func() error {
		attempts++
		return errors.New("permanent")
	})

	if !errors.Is(err, core.ErrMaxRetriesExceeded) {
		t.Errorf("expected ErrMaxRetriesExceeded, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected exactly MaxAttempts attempts, got %d", attempts)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := DefaultRetryConfig()
	err := Retry(ctx, config, func() error { return errors.New("should not run") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetryWithCircuitBreakerShortCircuits(t *testing.T) {
	cbConfig := DefaultConfig()
	cbConfig.Name = "llm-openai"
	cb, _ := NewCircuitBreaker(cbConfig)
	cb.ForceOpen()

	config := &RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	calls := 0
	err := RetryWithCircuitBreaker(context.Background(), config, cb, func() error {
		calls++
		return nil
	})

	if !errors.Is(err, core.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected wrapped function never to run while circuit is open, got %d calls", calls)
	}
}
