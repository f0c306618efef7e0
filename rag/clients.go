package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/reai-platform/core/core"
)

// LLMClient is the RAG Pipeline's view of the LLM Gateway (C2): every
// operator above retrieval is "use C2" per spec §4.4, so operators depend
// on this narrow interface rather than the gateway's full HTTP surface.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RetrievalClient is the RAG Pipeline's view of the Retrieval Gateway (C3).
type RetrievalClient interface {
	Search(ctx context.Context, query string, filters map[string]interface{}, limit int) ([]Document, error)
}

// httpLLMClient calls the LLM Gateway's /chat/completions endpoint.
type httpLLMClient struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewHTTPLLMClient(baseURL, model string, client *http.Client) LLMClient {
	if client == nil {
		client = &http.Client{Timeout: core.DefaultGatewayDeadline}
	}
	return &httpLLMClient{baseURL: baseURL, model: model, client: client}
}

type chatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []core.Message  `json:"messages"`
}

type chatCompletionResponse struct {
	Content string `json:"content"`
}

func (c *httpLLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: systemPrompt},
			{Role: core.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("rag: encode llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("rag: build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: llm gateway returned %d", core.ErrProviderUnavailable, resp.StatusCode)
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("rag: decode llm response: %w", err)
	}
	return out.Content, nil
}

// httpRetrievalClient calls the Retrieval Gateway's /search endpoint.
type httpRetrievalClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRetrievalClient(baseURL string, client *http.Client) RetrievalClient {
	if client == nil {
		client = &http.Client{Timeout: core.DefaultGatewayDeadline}
	}
	return &httpRetrievalClient{baseURL: baseURL, client: client}
}

type searchRequestBody struct {
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters"`
	Limit   int                    `json:"limit"`
}

type searchResponseBody struct {
	Results []struct {
		ID         string                 `json:"id"`
		Title      string                 `json:"title"`
		Score      float64                `json:"score"`
		Attributes map[string]interface{} `json:"attributes"`
	} `json:"results"`
}

func (c *httpRetrievalClient) Search(ctx context.Context, query string, filters map[string]interface{}, limit int) ([]Document, error) {
	body, err := json.Marshal(searchRequestBody{Query: query, Filters: filters, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("rag: encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rag: build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: retrieval gateway returned %d", core.ErrProviderUnavailable, resp.StatusCode)
	}

	var out searchResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("rag: decode search response: %w", err)
	}

	docs := make([]Document, len(out.Results))
	for i, r := range out.Results {
		docs[i] = Document{ID: r.ID, Title: r.Title, Score: r.Score}
	}
	return docs, nil
}
