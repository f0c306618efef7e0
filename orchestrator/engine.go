package orchestrator

import (
	"context"
	"strconv"
	"time"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/knowledge"
)

// Config holds the Orchestrator's tunables (spec §6 env var list).
type Config struct {
	MaxQueryLength          int
	HistoryWindow           int
	LastRetrievedK           int
	PropertyKeywordThreshold float64
}

func DefaultConfig() Config {
	return Config{
		MaxQueryLength:           core.EnvInt("MAX_QUERY_LENGTH", 500),
		HistoryWindow:            core.EnvInt("CONVERSATION_HISTORY_WINDOW", 10),
		LastRetrievedK:           core.EnvInt("CONVERSATION_LAST_RETRIEVED_K", 10),
		PropertyKeywordThreshold: core.EnvFloat("PROPERTY_DETAIL_KEYWORD_THRESHOLD", 0.3),
	}
}

// Engine runs the ten processing stages of orchestrate() (spec §4.5).
type Engine struct {
	cfg         Config
	conversations ConversationStore
	knowledge   *knowledge.Base
	classifier  *IntentClassifier
	router      *Router
	logger      core.Logger
}

func NewEngine(cfg Config, conversations ConversationStore, kb *knowledge.Base, classifier *IntentClassifier, router *Router, logger core.Logger) *Engine {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Engine{cfg: cfg, conversations: conversations, knowledge: kb, classifier: classifier, router: router, logger: logger}
}

// clarificationMessage is the polite, language-appropriate prompt used for
// both empty-query rejection and critical ambiguity (spec §4.5 stage 1,
// scenario 1: "a polite Vietnamese prompt").
func clarificationMessage(language string) string {
	if language == "vi" {
		return "Bạn có thể cho tôi biết bạn đang tìm loại bất động sản nào không?"
	}
	return "Could you tell me more about the property you're looking for?"
}

// Orchestrate runs all ten stages and returns the assembled response
// (spec §4.5).
func (e *Engine) Orchestrate(ctx context.Context, req Request) (Response, *ReasoningChain) {
	start := time.Now()
	chain := &ReasoningChain{}

	// Stage 1: input validation.
	stageStart := time.Now()
	if isBlank(req.Query) {
		chain.append("query_analysis", req.Query, "rejected: empty query", time.Since(stageStart), 0)
		return Response{
			Intent:          IntentUnknown,
			Confidence:      0,
			ResponseText:    clarificationMessage(req.Language),
			ServiceUsed:     "orchestrator",
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, chain
	}
	cleaned, truncated := truncateToMaxLength(req.Query, e.cfg.MaxQueryLength)
	if truncated {
		e.logger.Warn("orchestrator: query exceeded max length, truncated", map[string]interface{}{"max_length": e.cfg.MaxQueryLength})
	}
	normalized := normalize(cleaned)
	chain.append("query_analysis", req.Query, normalized, time.Since(stageStart), 1)

	// Stage 2: language detection.
	stageStart = time.Now()
	language := req.Language
	if language == "" {
		language = detectLanguage(normalized)
	}
	chain.append("query_analysis", normalized, "language="+language, time.Since(stageStart), 1)

	// Stage 3: conversation load.
	stageStart = time.Now()
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = req.UserID + ":default"
	}
	state, err := e.conversations.Load(ctx, req.UserID, conversationID)
	if err != nil {
		e.logger.Error("orchestrator: conversation load failed", map[string]interface{}{"error": err.Error()})
		state = &ConversationState{UserID: req.UserID, ConversationID: conversationID}
	}
	history := state.History
	if len(history) > e.cfg.HistoryWindow {
		history = history[len(history)-e.cfg.HistoryWindow:]
	}
	chain.append("query_analysis", conversationID, summarizeHistory(history), time.Since(stageStart), 1)

	// Stage 4: knowledge expansion.
	stageStart = time.Now()
	var expansions []knowledge.Expansion
	filters := map[string]interface{}{}
	if e.knowledge != nil {
		expansions = e.knowledge.Expand(normalized)
		for _, exp := range expansions {
			for k, v := range exp.SuggestedFilters {
				filters[k] = v
			}
		}
	}
	chain.append("knowledge_expansion", normalized, summarizeExpansions(expansions), time.Since(stageStart), 1)

	// Stage 5: ambiguity detection.
	stageStart = time.Now()
	ambiguity := detectAmbiguity(normalized)
	chain.append("ambiguity_check", normalized, summarizeAmbiguity(ambiguity), time.Since(stageStart), confidenceForAmbiguity(ambiguity))
	if ambiguity.NeedsClarification {
		resp := Response{
			Intent:             IntentUnknown,
			Confidence:         0.6,
			ResponseText:       clarificationMessage(language),
			NeedsClarification: true,
			Clarifications:     ambiguity.Items,
			ServiceUsed:        "orchestrator",
			ExecutionTimeMs:    time.Since(start).Milliseconds(),
		}
		return resp, chain
	}

	// Stage 6: intent classification.
	stageStart = time.Now()
	intentResult := e.classifier.Classify(ctx, normalized, history)
	chain.append("intent_classification", normalized, string(intentResult.Intent), time.Since(stageStart), intentResult.Confidence)
	mergeEntityFilters(filters, intentResult.Entities)

	// Stage 7: routing decision.
	stageStart = time.Now()
	handler, serviceUsed, degraded := e.router.Route(ctx, intentResult.Intent)
	chain.append("routing_decision", string(intentResult.Intent), serviceUsed, time.Since(stageStart), 1)

	// Stage 8: handler execution.
	stageStart = time.Now()
	handlerReq := HandlerRequest{
		Query:    normalized,
		Filters:  filters,
		History:  history,
		Language: language,
		Entities: intentResult.Entities,
		State:    state,
	}
	result, err := handler.Handle(ctx, handlerReq)
	if err != nil {
		e.logger.Error("orchestrator: handler failed", map[string]interface{}{"intent": string(intentResult.Intent), "error": err.Error()})
		result = HandlerResult{Text: degradedMessage(language) + clarificationMessage(language), Confidence: 0.3}
		serviceUsed = "orchestrator"
	} else if degraded {
		result.Text = degradedMessage(language) + result.Text
	}
	chain.append("generation", string(intentResult.Intent), summarize(result.Text), time.Since(stageStart), result.Confidence)

	// Stage 9: state update.
	stageStart = time.Now()
	now := time.Now()
	state.History = append(state.History,
		Message{Role: string(core.RoleUser), Content: req.Query, Timestamp: now},
		Message{Role: string(core.RoleAssistant), Content: result.Text, Timestamp: now},
	)
	if intentResult.Intent == IntentSearch || intentResult.Intent == IntentPropertyDetail {
		if len(result.Sources) > 0 {
			state.LastRetrieved = result.Sources
			if e.cfg.LastRetrievedK > 0 && len(state.LastRetrieved) > e.cfg.LastRetrievedK {
				state.LastRetrieved = state.LastRetrieved[:e.cfg.LastRetrievedK]
			}
		}
	}
	if err := e.conversations.Save(ctx, state); err != nil {
		e.logger.Error("orchestrator: conversation save failed", map[string]interface{}{"error": err.Error()})
	}
	chain.append("query_analysis", "state update", summarize(conversationID), time.Since(stageStart), 1)

	// Stage 10: response assembly.
	return Response{
		Intent:          intentResult.Intent,
		Confidence:      result.Confidence,
		ResponseText:    result.Text,
		Components:      result.Components,
		Sources:         result.Sources,
		ServiceUsed:     serviceUsed,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, chain
}

func summarizeHistory(history []Message) string {
	return summarize(strconv.Itoa(len(history)) + " prior messages")
}

func summarizeExpansions(expansions []knowledge.Expansion) string {
	if len(expansions) == 0 {
		return "no expansions"
	}
	return summarize(strconv.Itoa(len(expansions)) + " phrase expansions applied")
}

func summarizeAmbiguity(result AmbiguityResult) string {
	if len(result.Items) == 0 {
		return "no ambiguity"
	}
	return summarize(strconv.Itoa(len(result.Items)) + " ambiguity items")
}

func confidenceForAmbiguity(result AmbiguityResult) float64 {
	if result.NeedsClarification {
		return 0.6
	}
	return 1
}

func mergeEntityFilters(filters map[string]interface{}, entities Entities) {
	if entities.PriceMin != nil {
		filters["price_gte"] = *entities.PriceMin
	}
	if entities.PriceMax != nil {
		filters["price_lte"] = *entities.PriceMax
	}
	if entities.Bedrooms != nil {
		filters["bedrooms"] = *entities.Bedrooms
	}
	if entities.Location != "" {
		filters["location"] = entities.Location
	}
	if len(entities.Features) > 0 {
		filters["features"] = entities.Features
	}
}

func summarize(s string) string {
	const max = 80
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
