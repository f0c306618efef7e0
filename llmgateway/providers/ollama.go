package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/reai-platform/core/core"
)

// Ollama adapts a local Ollama server's /api/chat and /api/embed
// endpoints, giving the gateway a self-hosted fallback with no API key
// (spec §4.2's illustrative routing table lists ollama as a local fallback).
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

func NewOllama(baseURL string, httpClient *http.Client) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Ollama{baseURL: baseURL, httpClient: httpClient}
}

func (p *Ollama) Name() string { return "ollama" }

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string               `json:"model"`
	Messages []ollamaChatMessage  `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (p *Ollama) Complete(ctx context.Context, model string, messages []core.Message, temperature float64, maxTokens int) (string, string, TokenUsage, error) {
	msgs := make([]ollamaChatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = ollamaChatMessage{Role: string(m.Role), Content: m.Content}
	}
	body, err := json.Marshal(ollamaChatRequest{Model: model, Messages: msgs, Stream: false})
	if err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", TokenUsage{}, classifyHTTPStatus(resp.StatusCode)
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("ollama: decode response: %w", err)
	}
	usage := TokenUsage{
		PromptTokens:     out.PromptEvalCount,
		CompletionTokens: out.EvalCount,
		TotalTokens:      out.PromptEvalCount + out.EvalCount,
	}
	return out.Message.Content, out.DoneReason, usage, nil
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *Ollama) Embed(ctx context.Context, model string, input []string) ([][]float32, TokenUsage, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: model, Input: input})
	if err != nil {
		return nil, TokenUsage{}, fmt.Errorf("ollama: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, TokenUsage{}, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, TokenUsage{}, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, TokenUsage{}, classifyHTTPStatus(resp.StatusCode)
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, TokenUsage{}, fmt.Errorf("ollama: decode response: %w", err)
	}
	return out.Embeddings, TokenUsage{}, nil
}
