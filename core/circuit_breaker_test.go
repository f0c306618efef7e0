package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

// passthroughBreaker is a minimal CircuitBreaker used only to pin the
// interface contract at compile time; the real implementation is
// resilience.CircuitBreaker (the retrieval gateway's gobreaker breaker
// does not implement this interface).
type passthroughBreaker struct {
	state string
}

func (b *passthroughBreaker) Execute(ctx context.Context, fn func() error) error {
	return fn()
}

func (b *passthroughBreaker) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, fn func() error) error {
	return fn()
}

func (b *passthroughBreaker) GetState() string                      { return b.state }
func (b *passthroughBreaker) GetMetrics() map[string]interface{}    { return nil }
func (b *passthroughBreaker) Reset()                                 { b.state = "closed" }
func (b *passthroughBreaker) CanExecute() bool                       { return b.state != "open" }

var _ CircuitBreaker = (*passthroughBreaker)(nil)

func TestCircuitBreakerInterfaceExecutePropagatesResult(t *testing.T) {
	cb := &passthroughBreaker{state: "closed"}

	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	boom := errors.New("boom")
	if err := cb.Execute(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error to propagate, got %v", err)
	}
}

func TestCircuitBreakerInterfaceCanExecuteReflectsState(t *testing.T) {
	cb := &passthroughBreaker{state: "open"}
	if cb.CanExecute() {
		t.Error("expected CanExecute to be false while open")
	}

	cb.Reset()
	if !cb.CanExecute() {
		t.Error("expected CanExecute to be true after Reset")
	}
}
