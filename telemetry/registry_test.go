package telemetry

import (
	"sync"
	"testing"
)

func resetGlobalTelemetry() {
	initOnce = sync.Once{}
	telemetryLoggerOnce = sync.Once{}
	globalRegistry.Store((*Registry)(nil))
	declaredMetrics.Range(func(key, _ interface{}) bool {
		declaredMetrics.Delete(key)
		return true
	})
}

func TestGetRegistryNilBeforeInitialize(t *testing.T) {
	resetGlobalTelemetry()
	defer resetGlobalTelemetry()

	if GetRegistry() != nil {
		t.Fatal("expected nil registry before Initialize")
	}
}

func TestDeclareMetricsSurvivesBeforeInitialize(t *testing.T) {
	resetGlobalTelemetry()
	defer resetGlobalTelemetry()

	DeclareMetrics("retrieval-gateway", ModuleConfig{
		Metrics: []MetricDefinition{{Name: "retrieval.query.count", Type: "counter"}},
	})

	if _, ok := declaredMetrics.Load("retrieval-gateway"); !ok {
		t.Fatal("expected declaration to be stored before Initialize runs")
	}
}

func TestEmitIsNoOpBeforeInitialize(t *testing.T) {
	resetGlobalTelemetry()
	defer resetGlobalTelemetry()

	// Should not panic even though no registry exists yet.
	Emit("orchestrator.step.duration", 1.5, "step", "rank")
	Counter("orchestrator.step.count", "step", "rank")
}

func TestParseLabelsPairsUpOddLengthSafely(t *testing.T) {
	labels := parseLabels("provider", "openai", "status")
	if labels["provider"] != "openai" {
		t.Fatalf("expected provider=openai, got %v", labels)
	}
	if _, ok := labels["status"]; ok {
		t.Fatal("expected dangling unpaired key to be dropped")
	}
}
