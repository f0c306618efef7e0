package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IntentClassifier turns a cleaned query plus conversation history into an
// IntentResult, using C2 with a deterministic keyword fallback when the
// LLM response is unparseable (spec §4.5 stage 6).
type IntentClassifier struct {
	llm LLMClient
}

// LLMClient is the subset of the LLM Gateway's chat surface the Orchestrator
// needs. Kept minimal so this package does not import llmgateway directly
// (the services talk HTTP+JSON per spec §6, not Go-level types).
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func NewIntentClassifier(llm LLMClient) *IntentClassifier {
	return &IntentClassifier{llm: llm}
}

const intentSystemPrompt = `You classify a real-estate assistant's user query into exactly one of:
search, property_detail, compare, price_analysis, investment_advice, location_insights, legal_guidance, chat, unknown.
Respond with a single fenced JSON code block with fields: intent, confidence (0-1), entities {price_min, price_max, bedrooms, location, features}.

Example:
Query: "Find a 2 bedroom apartment in district 7"
` + "```json" + `
{"intent": "search", "confidence": 0.95, "entities": {"bedrooms": 2, "location": "district 7"}}
` + "```" + `

Example:
Query: "Hi there"
` + "```json" + `
{"intent": "chat", "confidence": 0.9, "entities": {}}
` + "```"

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

type intentLLMResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Entities   struct {
		PriceMin *float64 `json:"price_min"`
		PriceMax *float64 `json:"price_max"`
		Bedrooms *int     `json:"bedrooms"`
		Location string   `json:"location"`
		Features []string `json:"features"`
	} `json:"entities"`
}

// Classify asks C2 for an intent and falls back to a keyword rule on any
// failure to get a well-formed response (spec §7's "parse defensively"
// guidance: fenced-block extractor, then lenient JSON, then keyword rule).
func (c *IntentClassifier) Classify(ctx context.Context, query string, history []Message) IntentResult {
	raw, err := c.llm.Complete(ctx, intentSystemPrompt, buildIntentUserPrompt(query, history))
	if err == nil {
		if result, ok := parseIntentResponse(raw); ok {
			return result
		}
	}
	return keywordFallbackIntent(query)
}

func buildIntentUserPrompt(query string, history []Message) string {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "Query: %q", query)
	return b.String()
}

func parseIntentResponse(raw string) (IntentResult, bool) {
	match := fencedJSONPattern.FindStringSubmatch(raw)
	candidate := raw
	if match != nil {
		candidate = match[1]
	}
	var parsed intentLLMResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &parsed); err != nil {
		return IntentResult{}, false
	}
	intent := Intent(parsed.Intent)
	if !isKnownIntent(intent) {
		return IntentResult{}, false
	}
	return IntentResult{
		Intent:     intent,
		Confidence: parsed.Confidence,
		Entities: Entities{
			PriceMin: parsed.Entities.PriceMin,
			PriceMax: parsed.Entities.PriceMax,
			Bedrooms: parsed.Entities.Bedrooms,
			Location: parsed.Entities.Location,
			Features: parsed.Entities.Features,
		},
	}, true
}

func isKnownIntent(i Intent) bool {
	switch i {
	case IntentSearch, IntentPropertyDetail, IntentCompare, IntentPriceAnalysis,
		IntentInvestmentAdvice, IntentLocationInsights, IntentLegalGuidance, IntentChat, IntentUnknown:
		return true
	}
	return false
}

var propertyDomainKeywords = []string{
	"apartment", "house", "villa", "condo", "studio", "rent", "buy", "district",
	"căn hộ", "nhà", "biệt thự", "quận", "thuê", "mua",
}

var greetingWords = []string{
	"hi", "hello", "hey", "thanks", "thank you", "xin chào", "cảm ơn",
}

// keywordFallbackIntent implements spec §4.5 stage 6's deterministic
// fallback: property-domain keyword → search, bare greeting → chat, else
// unknown.
func keywordFallbackIntent(query string) IntentResult {
	lower := strings.ToLower(query)
	if containsAny(lower, propertyDomainKeywords) {
		return IntentResult{Intent: IntentSearch, Confidence: 0.4, Entities: extractEntitiesHeuristically(lower)}
	}
	if containsAny(lower, greetingWords) {
		return IntentResult{Intent: IntentChat, Confidence: 0.4}
	}
	return IntentResult{Intent: IntentUnknown, Confidence: 0.2}
}

var bedroomPattern = regexp.MustCompile(`(\d+)\s*(?:bedroom|br|phòng ngủ)`)

// extractEntitiesHeuristically recovers a bedroom count when the fallback
// path is used, so degraded classification still yields usable filters.
func extractEntitiesHeuristically(lower string) Entities {
	var e Entities
	if m := bedroomPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			e.Bedrooms = &n
		}
	}
	return e
}
