package registry

import (
	"errors"
	"testing"

	"github.com/reai-platform/core/core"
)

func TestRegisterThenGet(t *testing.T) {
	c := NewCatalog(3, nil)

	rec, err := c.Register("llmgateway", "10.0.0.1", 8081, "v1", []string{"chat", "embeddings"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.URL != "http://10.0.0.1:8081" {
		t.Errorf("unexpected URL %q", rec.URL)
	}
	if rec.Status != StatusUnknown {
		t.Errorf("expected unknown status until first probe, got %s", rec.Status)
	}

	got, err := c.Get("llmgateway")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "llmgateway" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestRegisterOverwritesExisting(t *testing.T) {
	c := NewCatalog(3, nil)
	_, _ = c.Register("svc", "10.0.0.1", 8080, "v1", nil)
	rec2, err := c.Register("svc", "10.0.0.2", 9090, "v2", []string{"search"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec2.Host != "10.0.0.2" || rec2.Port != 9090 {
		t.Errorf("expected overwrite to take effect, got %+v", rec2)
	}
	if len(c.List("", "")) != 1 {
		t.Errorf("expected exactly one record after overwrite")
	}
}

func TestDeregisterIsIdempotent(t *testing.T) {
	c := NewCatalog(3, nil)
	_, _ = c.Register("svc", "10.0.0.1", 8080, "v1", nil)
	c.Deregister("svc")
	c.Deregister("svc")

	if _, err := c.Get("svc"); !errors.Is(err, core.ErrServiceNotFound) {
		t.Errorf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestListFiltersByCapabilityAndStatus(t *testing.T) {
	c := NewCatalog(3, nil)
	_, _ = c.Register("retrieval", "h1", 1, "v1", []string{"search"})
	_, _ = c.Register("llmgateway", "h2", 2, "v1", []string{"chat"})
	c.markProbeResult("retrieval", true)

	healthySearch := c.List("search", StatusHealthy)
	if len(healthySearch) != 1 || healthySearch[0].Name != "retrieval" {
		t.Errorf("expected only retrieval to match, got %+v", healthySearch)
	}

	chatOnly := c.List("chat", "")
	if len(chatOnly) != 1 || chatOnly[0].Name != "llmgateway" {
		t.Errorf("expected only llmgateway to match, got %+v", chatOnly)
	}
}

func TestStatsAggregatesByStatus(t *testing.T) {
	c := NewCatalog(3, nil)
	_, _ = c.Register("a", "h", 1, "v1", nil)
	_, _ = c.Register("b", "h", 2, "v1", nil)
	c.markProbeResult("a", true)
	c.markProbeResult("b", false)

	stats := c.Stats()
	if stats.Total != 2 || stats.Healthy != 1 || stats.Unhealthy != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestEvictionAfterConsecutiveFailures(t *testing.T) {
	c := NewCatalog(3, nil)
	_, _ = c.Register("flaky", "h", 1, "v1", nil)

	for i := 0; i < 2; i++ {
		if evicted := c.markProbeResult("flaky", false); evicted {
			t.Fatalf("should not evict before threshold, iteration %d", i)
		}
	}
	if evicted := c.markProbeResult("flaky", false); !evicted {
		t.Fatal("expected eviction on third consecutive failure")
	}

	if _, err := c.Get("flaky"); !errors.Is(err, core.ErrServiceNotFound) {
		t.Errorf("expected record gone after eviction, got %v", err)
	}
}

func TestHeartbeatDoesNotMarkHealthy(t *testing.T) {
	c := NewCatalog(3, nil)
	_, _ = c.Register("svc", "h", 1, "v1", nil)
	if err := c.Heartbeat("svc"); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	rec, _ := c.Get("svc")
	if rec.Status != StatusUnknown {
		t.Errorf("expected heartbeat alone not to change status, got %s", rec.Status)
	}
}

func TestRegisterRejectsInvalidArguments(t *testing.T) {
	c := NewCatalog(3, nil)
	if _, err := c.Register("", "h", 1, "v1", nil); !errors.Is(err, core.ErrInputInvalid) {
		t.Errorf("expected ErrInputInvalid for empty name, got %v", err)
	}
	if _, err := c.Register("svc", "h", 0, "v1", nil); !errors.Is(err, core.ErrInputInvalid) {
		t.Errorf("expected ErrInputInvalid for zero port, got %v", err)
	}
}
