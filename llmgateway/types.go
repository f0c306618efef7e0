// Package llmgateway implements the LLM Gateway (C2): the single call
// site for LLM usage, absorbing provider variance behind model routing,
// per-route circuit breakers and retry with exponential backoff.
package llmgateway

import (
	"time"

	"github.com/reai-platform/core/core"
)

// LLMRequest is the gateway's uniform chat request (spec §3).
type LLMRequest struct {
	Model       string         `json:"model"`
	Messages    []core.Message `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Tools       []Tool         `json:"tools,omitempty"`
	Stream      bool           `json:"stream,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
}

// Tool mirrors the OpenAI-compatible tool-call schema the gateway accepts
// and forwards (spec §6's "OpenAI-compatible request body").
type Tool struct {
	Type     string                 `json:"type"`
	Function map[string]interface{} `json:"function"`
}

// TokenUsage reports prompt/completion/total token counts (spec §3).
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// LLMResponse is the gateway's uniform chat response (spec §3).
type LLMResponse struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	ModelActual  string     `json:"model_actual,omitempty"`
	Content      string     `json:"content"`
	FinishReason string     `json:"finish_reason"`
	Usage        TokenUsage `json:"usage"`
	Provider     string     `json:"provider"`
	Latency      time.Duration `json:"latency_ns"`
}

// EmbedRequest is the uniform embeddings request (spec §6 POST /embeddings).
type EmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbedResponse mirrors the OpenAI-compatible embeddings response shape.
type EmbedResponse struct {
	Data  []EmbedDatum `json:"data"`
	Usage TokenUsage   `json:"usage"`
}

type EmbedDatum struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// ModelDescriptor is one entry of GET /models (spec §6).
type ModelDescriptor struct {
	LogicalTag string   `json:"logical_tag"`
	Providers  []string `json:"providers"`
}
