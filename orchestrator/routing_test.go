package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeLLM struct{ text string }

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.text, nil
}

func newRouterWithRegistryServer(t *testing.T, statuses map[string]string) (*Router, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/services/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/services/"):]
		status, ok := statuses[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"` + name + `","status":"` + status + `"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := srv.Client()
	registry := NewRegistryClient(srv.URL, client)
	llm := &fakeLLM{text: "hi"}
	router := NewRouter(RouterDeps{
		Registry:         registry,
		RAG:              NewRAGClient("http://unused", client),
		Retrieval:        NewRetrievalClient("http://unused", client),
		LLM:              llm,
		HTTPClient:       client,
		KeywordThreshold: 0.3,
	})
	return router, srv
}

func TestRouteReturnsNamedHandlerWhenServiceHealthy(t *testing.T) {
	router, _ := newRouterWithRegistryServer(t, map[string]string{"rag-pipeline": "healthy"})

	_, serviceUsed, degraded := router.Route(context.Background(), IntentSearch)
	if degraded {
		t.Errorf("expected no degradation when service healthy")
	}
	if serviceUsed != "rag-pipeline" {
		t.Errorf("expected rag-pipeline, got %s", serviceUsed)
	}
}

func TestRouteDegradesToChatWhenServiceUnhealthy(t *testing.T) {
	router, _ := newRouterWithRegistryServer(t, map[string]string{"rag-pipeline": "unhealthy"})

	_, serviceUsed, degraded := router.Route(context.Background(), IntentSearch)
	if !degraded {
		t.Errorf("expected degradation when service unhealthy")
	}
	if serviceUsed != "llm-gateway" {
		t.Errorf("expected fallback to llm-gateway, got %s", serviceUsed)
	}
}

func TestRouteDegradesToChatWhenServiceUnregistered(t *testing.T) {
	router, _ := newRouterWithRegistryServer(t, map[string]string{})

	_, _, degraded := router.Route(context.Background(), IntentPropertyDetail)
	if !degraded {
		t.Errorf("expected degradation when service is not registered at all")
	}
}

func TestRouteNeverDegradesChatIntents(t *testing.T) {
	router, _ := newRouterWithRegistryServer(t, map[string]string{})

	for _, intent := range []Intent{IntentChat, IntentLegalGuidance, IntentUnknown} {
		_, serviceUsed, degraded := router.Route(context.Background(), intent)
		if degraded {
			t.Errorf("intent %s should never be marked degraded (it already routes to C2 directly)", intent)
		}
		if serviceUsed != "llm-gateway" {
			t.Errorf("intent %s expected llm-gateway, got %s", intent, serviceUsed)
		}
	}
}
