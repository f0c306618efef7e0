package telemetry

import "testing"

func TestContainsMatchesPrefixAndSuffix(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"llm_request_duration_ms", true},
		{"retrieval_latency", true},
		{"total_retrieval_queries", true},
		{"orchestrator_plan_success", true},
		{"listing_price", false},
	}

	for _, c := range cases {
		got := contains(c.name, "duration", "latency", "time", "count", "total", "errors", "success")
		if got != c.want {
			t.Errorf("contains(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNewOTelProviderRejectsEmptyServiceName(t *testing.T) {
	if _, err := NewOTelProvider("", "localhost:4318"); err == nil {
		t.Fatal("expected error for empty service name")
	}
}
