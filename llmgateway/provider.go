package llmgateway

import "context"

// Provider is the uniform surface every backend (OpenAI, Anthropic, Ollama)
// implements so the gateway's fallback chain can treat them identically
// (spec §4.2 "provider adapters").
type Provider interface {
	// Name identifies the provider for logging, metrics and response tagging.
	Name() string
	// Complete issues a chat completion against model.
	Complete(ctx context.Context, model string, req LLMRequest) (LLMResponse, error)
	// Embed issues an embeddings call against model.
	Embed(ctx context.Context, model string, req EmbedRequest) (EmbedResponse, error)
}
