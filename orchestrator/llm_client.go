package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// httpLLMClient is the Orchestrator's direct HTTP view of C2, used by both
// the intent classifier and the chat handler (spec §6: POST
// /chat/completions).
type httpLLMClient struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewHTTPLLMClient(baseURL, model string, client *http.Client) LLMClient {
	return &httpLLMClient{baseURL: baseURL, model: model, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Content string `json:"content"`
}

func (c *httpLLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm client: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm client: call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm client: unexpected status %d", resp.StatusCode)
	}
	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("llm client: decode response: %w", err)
	}
	return decoded.Content, nil
}
