package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/reai-platform/core/core"
)

// Anthropic is a minimal Messages-API adapter. The example pack carries no
// Anthropic SDK, so this talks the documented HTTP contract directly over a
// pooled http.Client, the same pattern OpenAI uses underneath go-openai.
type Anthropic struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropic(apiKey, baseURL string, httpClient *http.Client) *Anthropic {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Anthropic{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
}

func (p *Anthropic) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *Anthropic) Complete(ctx context.Context, model string, messages []core.Message, temperature float64, maxTokens int) (string, string, TokenUsage, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	msgs := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			continue
		}
		msgs = append(msgs, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}
	body, err := json.Marshal(anthropicRequest{Model: model, Messages: msgs, MaxTokens: maxTokens})
	if err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("anthropic: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("anthropic: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", TokenUsage{}, classifyHTTPStatus(resp.StatusCode)
	}

	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", TokenUsage{}, fmt.Errorf("anthropic: decode response: %w", err)
	}
	text := ""
	if len(out.Content) > 0 {
		text = out.Content[0].Text
	}
	usage := TokenUsage{
		PromptTokens:     out.Usage.InputTokens,
		CompletionTokens: out.Usage.OutputTokens,
		TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
	}
	return text, out.StopReason, usage, nil
}

// Embed is unimplemented: Anthropic's API has no embeddings endpoint.
func (p *Anthropic) Embed(ctx context.Context, model string, input []string) ([][]float32, TokenUsage, error) {
	return nil, TokenUsage{}, fmt.Errorf("%w: anthropic has no embeddings endpoint", core.ErrBadRequest)
}

func classifyHTTPStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return core.ErrRateLimited
	case status >= 500:
		return core.ErrProviderUnavailable
	case status >= 400:
		return core.ErrBadRequest
	default:
		return fmt.Errorf("%w: unexpected status %d", core.ErrProviderUnavailable, status)
	}
}
