package telemetry

import "testing"

func TestCardinalityLimiterAllowsUpToLimit(t *testing.T) {
	c := NewCardinalityLimiter(map[string]int{"district": 2})
	defer c.Stop()

	if got := c.CheckAndLimit("listings.viewed", "district", "soho"); got != "soho" {
		t.Fatalf("expected soho, got %s", got)
	}
	if got := c.CheckAndLimit("listings.viewed", "district", "tribeca"); got != "tribeca" {
		t.Fatalf("expected tribeca, got %s", got)
	}
}

func TestCardinalityLimiterFallsBackToOtherBeyondLimit(t *testing.T) {
	c := NewCardinalityLimiter(map[string]int{"district": 1})
	defer c.Stop()

	c.CheckAndLimit("listings.viewed", "district", "soho")
	got := c.CheckAndLimit("listings.viewed", "district", "tribeca")
	if got != "other" {
		t.Fatalf("expected other once limit exceeded, got %s", got)
	}
}

func TestCardinalityLimiterPassesThroughUnboundedLabels(t *testing.T) {
	c := NewCardinalityLimiter(map[string]int{"district": 1})
	defer c.Stop()

	got := c.CheckAndLimit("listings.viewed", "listing_id", "anything-goes-here")
	if got != "anything-goes-here" {
		t.Fatalf("expected passthrough for unlimited label, got %s", got)
	}
}

func TestCardinalityLimiterMaxCardinality(t *testing.T) {
	c := NewCardinalityLimiter(map[string]int{"district": 5, "provider": 10})
	defer c.Stop()

	if got := c.MaxCardinality(); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}
