// Package providers holds the gateway's concrete provider adapters.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/reai-platform/core/core"
)

// OpenAI adapts sashabaranov/go-openai to the gateway's Provider surface.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI builds an OpenAI provider sharing httpClient's connection pool
// (spec §4.2 "a single pooled http.Client per provider, not per request").
func NewOpenAI(apiKey, baseURL string, httpClient *http.Client) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) Complete(ctx context.Context, model string, messages []core.Message, temperature float64, maxTokens int) (string, string, TokenUsage, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", "", TokenUsage{}, classifyOpenAIError(err)
	}
	_ = start
	if len(resp.Choices) == 0 {
		return "", "", TokenUsage{}, fmt.Errorf("openai: empty choices for model %s", model)
	}
	choice := resp.Choices[0]
	usage := TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return choice.Message.Content, string(choice.FinishReason), usage, nil
}

func (p *OpenAI) Embed(ctx context.Context, model string, input []string) ([][]float32, TokenUsage, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: input,
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, TokenUsage{}, classifyOpenAIError(err)
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	usage := TokenUsage{
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	return out, usage, nil
}

func toOpenAIMessages(messages []core.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

// classifyOpenAIError maps go-openai's APIError into the gateway's error
// taxonomy so the retry/circuit-breaker layer can distinguish retryable
// transport failures from permanent 4xx rejections (spec §7).
func classifyOpenAIError(err error) error {
	apiErr, ok := err.(*openai.APIError)
	if !ok {
		return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	switch {
	case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", core.ErrRateLimited, err)
	case apiErr.HTTPStatusCode >= 500:
		return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	case apiErr.HTTPStatusCode >= 400:
		return fmt.Errorf("%w: %v", core.ErrBadRequest, err)
	default:
		return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
}

// TokenUsage mirrors llmgateway.TokenUsage without importing the parent
// package, keeping providers leaf-level and import-cycle free.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
