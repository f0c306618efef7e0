package telemetry

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsFirstCallThenThrottles(t *testing.T) {
	r := NewRateLimiter(50 * time.Millisecond)

	if !r.Allow() {
		t.Fatal("expected first call to be allowed")
	}
	if r.Allow() {
		t.Fatal("expected immediate second call to be throttled")
	}

	time.Sleep(60 * time.Millisecond)
	if !r.Allow() {
		t.Fatal("expected call after interval to be allowed again")
	}
}
