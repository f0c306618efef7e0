package llmgateway

import (
	"net/http"
	"strings"

	"github.com/reai-platform/core/core"
)

// Config collects the gateway's environment-driven settings (spec §6).
type Config struct {
	PrimaryProvider    string
	FallbackProviders  []string
	CircuitFailThreshold int
	CircuitResetSeconds  int

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicBaseURL string
	OllamaBaseURL   string

	DevMode bool
}

// DefaultConfig reads spec §6's recognized env vars, defaulting the
// illustrative routing table (openai primary, anthropic then ollama as
// fallbacks) when unset.
func DefaultConfig() Config {
	return Config{
		PrimaryProvider:      core.EnvString("LLM_PRIMARY_PROVIDER", "openai"),
		FallbackProviders:    core.EnvStringList("LLM_FALLBACK_PROVIDERS", []string{"anthropic", "ollama"}),
		CircuitFailThreshold: core.EnvInt("CIRCUIT_BREAKER_FAIL_THRESHOLD", 5),
		CircuitResetSeconds:  core.EnvInt("CIRCUIT_BREAKER_RESET_SECONDS", 60),
		OpenAIAPIKey:         core.EnvString("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        core.EnvString("OPENAI_BASE_URL", ""),
		AnthropicAPIKey:      core.EnvString("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL:     core.EnvString("ANTHROPIC_BASE_URL", ""),
		OllamaBaseURL:        core.EnvString("OLLAMA_BASE_URL", ""),
		DevMode:              core.EnvBool(core.EnvDevMode, false),
	}
}

// defaultChatModel is the model each provider serves for the "primary-chat"
// logical tag (spec §6's illustrative routing table).
func defaultChatModel(providerName string) string {
	switch providerName {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-haiku-20240307"
	case "ollama":
		return "llama3.2"
	default:
		return providerName
	}
}

// BuildRoutes turns cfg's primary/fallback provider ordering into the
// "primary-chat" and "primary-embed" routes (spec §6). Embeddings have no
// fallback: they are provider-specific (spec §6).
func (cfg Config) BuildRoutes() map[string]Route {
	order := append([]string{cfg.PrimaryProvider}, cfg.FallbackProviders...)
	chatSteps := make([]RouteStep, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		chatSteps = append(chatSteps, RouteStep{ProviderName: name, Model: defaultChatModel(name)})
	}

	return map[string]Route{
		"primary-chat": {LogicalTag: "primary-chat", Steps: chatSteps},
		"primary-embed": {
			LogicalTag: "primary-embed",
			Steps:      []RouteStep{{ProviderName: "openai", Model: "text-embedding-ada-002"}},
		},
	}
}

// BuildProviders constructs adapters for all three supported providers
// (openai, anthropic, ollama), whatever cfg's routing order names, sharing
// a single pooled http.Client (spec §4.2).
func (cfg Config) BuildProviders(httpClient *http.Client) map[string]Provider {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	providers := map[string]Provider{
		"openai":    wrapOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, httpClient),
		"anthropic": wrapAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, httpClient),
		"ollama":    wrapOllama(cfg.OllamaBaseURL, httpClient),
	}
	return providers
}
