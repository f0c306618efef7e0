package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RegistryClient is the Orchestrator's view of C1, used to decide whether a
// route's backing service is healthy before dispatching to it (spec §4.5
// stage 7: "If the selected handler or its downstream service is unhealthy
// per C1, fall back to the chat handler").
type RegistryClient struct {
	baseURL string
	client  *http.Client
}

func NewRegistryClient(baseURL string, client *http.Client) *RegistryClient {
	return &RegistryClient{baseURL: baseURL, client: client}
}

type serviceRecord struct {
	Name   string `json:"name"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Status string `json:"status"`
}

// Endpoint looks up serviceName and returns its base URL, for services the
// Orchestrator discovers dynamically rather than wiring by fixed env var
// (e.g. the external price-suggestion handler).
func (c *RegistryClient) Endpoint(ctx context.Context, serviceName string) (string, bool) {
	url := fmt.Sprintf("%s/services/%s", c.baseURL, serviceName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	var record serviceRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return "", false
	}
	if record.Status != "healthy" {
		return "", false
	}
	return fmt.Sprintf("http://%s:%d", record.Host, record.Port), true
}

// IsHealthy reports whether serviceName is currently registered with
// status "healthy". Any lookup failure is treated as unhealthy, never as a
// fatal error — a Registry outage degrades routing, it does not crash the
// request.
func (c *RegistryClient) IsHealthy(ctx context.Context, serviceName string) bool {
	_, ok := c.Endpoint(ctx, serviceName)
	return ok
}
