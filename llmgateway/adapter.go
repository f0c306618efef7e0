package llmgateway

import (
	"context"
	"net/http"
	"time"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/llmgateway/providers"
)

// wrapOpenAI, wrapAnthropic and wrapOllama build a Provider from each
// leaf adapter, keeping providers/ free of any dependency on llmgateway's
// own types.
func wrapOpenAI(apiKey, baseURL string, httpClient *http.Client) Provider {
	return wrapProvider(providers.NewOpenAI(apiKey, baseURL, httpClient))
}

func wrapAnthropic(apiKey, baseURL string, httpClient *http.Client) Provider {
	return wrapProvider(providers.NewAnthropic(apiKey, baseURL, httpClient))
}

func wrapOllama(baseURL string, httpClient *http.Client) Provider {
	return wrapProvider(providers.NewOllama(baseURL, httpClient))
}

// chatProvider is the subset of providers.* adapters a routed provider must
// implement; it lets providerAdapter wrap any of OpenAI/Anthropic/Ollama
// uniformly.
type chatProvider interface {
	Name() string
	Complete(ctx context.Context, model string, messages []core.Message, temperature float64, maxTokens int) (string, string, providers.TokenUsage, error)
	Embed(ctx context.Context, model string, input []string) ([][]float32, providers.TokenUsage, error)
}

// providerAdapter lifts a leaf providers.* client (which knows nothing
// about llmgateway's types, to stay import-cycle free) up to the
// llmgateway.Provider interface.
type providerAdapter struct {
	inner chatProvider
}

func wrapProvider(inner chatProvider) Provider {
	return &providerAdapter{inner: inner}
}

func (a *providerAdapter) Name() string { return a.inner.Name() }

func (a *providerAdapter) Complete(ctx context.Context, model string, req LLMRequest) (LLMResponse, error) {
	start := time.Now()
	content, finishReason, usage, err := a.inner.Complete(ctx, model, req.Messages, req.Temperature, req.MaxTokens)
	if err != nil {
		return LLMResponse{}, err
	}
	return LLMResponse{
		Model:        req.Model,
		ModelActual:  model,
		Content:      content,
		FinishReason: finishReason,
		Usage: TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
		Provider: a.inner.Name(),
		Latency:  time.Since(start),
	}, nil
}

func (a *providerAdapter) Embed(ctx context.Context, model string, req EmbedRequest) (EmbedResponse, error) {
	vectors, usage, err := a.inner.Embed(ctx, model, req.Input)
	if err != nil {
		return EmbedResponse{}, err
	}
	data := make([]EmbedDatum, len(vectors))
	for i, v := range vectors {
		data[i] = EmbedDatum{Embedding: v, Index: i}
	}
	return EmbedResponse{
		Data: data,
		Usage: TokenUsage{
			PromptTokens: usage.PromptTokens,
			TotalTokens:  usage.TotalTokens,
		},
	}, nil
}
