package orchestrator

import (
	"net/http"
	"time"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/knowledge"
)

// ServiceConfig wires the Orchestrator process's dependencies from
// environment variables (spec §6's recognized env var set).
type ServiceConfig struct {
	RegistryURL         string
	LLMGatewayURL       string
	RetrievalGatewayURL string
	RAGPipelineURL      string
	RedisAddr           string
	RedisTTL            time.Duration
	PrimaryChatModel    string
	DevMode             bool
	Engine              Config
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		RegistryURL:         core.EnvString("REGISTRY_URL", "http://localhost:8080"),
		LLMGatewayURL:       core.EnvString("LLM_GATEWAY_URL", "http://localhost:8081"),
		RetrievalGatewayURL: core.EnvString("RETRIEVAL_GATEWAY_URL", "http://localhost:8082"),
		RAGPipelineURL:      core.EnvString("RAG_PIPELINE_URL", "http://localhost:8083"),
		RedisAddr:           core.EnvString("REDIS_ADDR", "localhost:6379"),
		RedisTTL:            core.EnvDuration("CONVERSATION_TTL", 24*time.Hour),
		PrimaryChatModel:    core.EnvString("LLM_PRIMARY_MODEL", "primary-chat"),
		DevMode:             core.EnvBool(core.EnvDevMode, false),
		Engine:              DefaultConfig(),
	}
}

// BuildEngine assembles a fully wired Engine from cfg: conversation store,
// knowledge base, intent classifier, and router, all talking HTTP to C1-C4
// (spec §9's independent-process layout).
func BuildEngine(cfg ServiceConfig, kb *knowledge.Base, logger core.Logger) *Engine {
	httpClient := &http.Client{Timeout: core.DefaultGatewayDeadline}

	conversations := NewRedisConversationStore(cfg.RedisAddr, cfg.RedisTTL, cfg.Engine.HistoryWindow)
	registry := NewRegistryClient(cfg.RegistryURL, httpClient)
	ragClient := NewRAGClient(cfg.RAGPipelineURL, httpClient)
	retrievalClient := NewRetrievalClient(cfg.RetrievalGatewayURL, httpClient)
	llmClient := NewHTTPLLMClient(cfg.LLMGatewayURL, cfg.PrimaryChatModel, httpClient)

	classifier := NewIntentClassifier(llmClient)
	router := NewRouter(RouterDeps{
		Registry:         registry,
		RAG:              ragClient,
		Retrieval:        retrievalClient,
		LLM:              llmClient,
		HTTPClient:       httpClient,
		KeywordThreshold: cfg.Engine.PropertyKeywordThreshold,
	})

	return NewEngine(cfg.Engine, conversations, kb, classifier, router, logger)
}
