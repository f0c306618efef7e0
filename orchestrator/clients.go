package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RAGClient is the Orchestrator's HTTP view of C4 (spec §6: services talk
// HTTP+JSON across the C5→C4 boundary, not shared Go types).
type RAGClient struct {
	baseURL string
	client  *http.Client
}

func NewRAGClient(baseURL string, client *http.Client) *RAGClient {
	return &RAGClient{baseURL: baseURL, client: client}
}

type ragRunRequest struct {
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters,omitempty"`
	History []ragHistoryMessage    `json:"history,omitempty"`
	Mode    string                 `json:"mode,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
}

type ragHistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ragRunResponse struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Sources    []struct {
		ID    string  `json:"id"`
		Title string  `json:"title"`
		Score float64 `json:"score"`
	} `json:"sources"`
}

// Run invokes C4's POST /run for the given mode ("search", "compare",
// "investment_advice", "location_insights").
func (c *RAGClient) Run(ctx context.Context, query string, filters map[string]interface{}, history []Message, mode string, limit int) (HandlerResult, error) {
	body := ragRunRequest{Query: query, Filters: filters, Mode: mode, Limit: limit}
	for _, m := range history {
		body.History = append(body.History, ragHistoryMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("rag client: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(payload))
	if err != nil {
		return HandlerResult{}, fmt.Errorf("rag client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("rag client: call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return HandlerResult{}, fmt.Errorf("rag client: unexpected status %d", resp.StatusCode)
	}
	var decoded ragRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return HandlerResult{}, fmt.Errorf("rag client: decode response: %w", err)
	}
	result := HandlerResult{Text: decoded.Answer, Confidence: decoded.Confidence}
	components := make([]map[string]interface{}, 0, len(decoded.Sources))
	for _, s := range decoded.Sources {
		result.Sources = append(result.Sources, s.ID)
		components = append(components, map[string]interface{}{
			"id": s.ID, "title": s.Title, "score": s.Score,
		})
	}
	if len(components) > 0 {
		result.Components = []Component{{Type: "property-carousel", Data: map[string]interface{}{
			"properties": components,
			"total":      len(components),
		}}}
	}
	return result, nil
}

// RetrievalClient is the Orchestrator's HTTP view of C3, used directly by
// PropertyDetailHandler rather than through the RAG Pipeline (spec §4.5:
// "ID mode: ... fetch detail via the Retrieval Gateway").
type RetrievalClient struct {
	baseURL string
	client  *http.Client
}

func NewRetrievalClient(baseURL string, client *http.Client) *RetrievalClient {
	return &RetrievalClient{baseURL: baseURL, client: client}
}

type retrievalSearchRequest struct {
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters,omitempty"`
	Limit   int                    `json:"limit"`
}

type retrievalDocument struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Score      float64                `json:"score"`
	Attributes map[string]interface{} `json:"attributes"`
}

type retrievalSearchResponse struct {
	Results []retrievalDocument `json:"results"`
}

func (c *RetrievalClient) Search(ctx context.Context, query string, limit int) ([]retrievalDocument, error) {
	payload, err := json.Marshal(retrievalSearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("retrieval client: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("retrieval client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval client: call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval client: unexpected status %d", resp.StatusCode)
	}
	var decoded retrievalSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("retrieval client: decode response: %w", err)
	}
	return decoded.Results, nil
}

func (c *RetrievalClient) GetByID(ctx context.Context, id string) (retrievalDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/properties/"+id, nil)
	if err != nil {
		return retrievalDocument{}, fmt.Errorf("retrieval client: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return retrievalDocument{}, fmt.Errorf("retrieval client: call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return retrievalDocument{}, fmt.Errorf("retrieval client: property %s not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		return retrievalDocument{}, fmt.Errorf("retrieval client: unexpected status %d", resp.StatusCode)
	}
	var doc retrievalDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return retrievalDocument{}, fmt.Errorf("retrieval client: decode response: %w", err)
	}
	return doc, nil
}
