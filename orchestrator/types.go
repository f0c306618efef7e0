// Package orchestrator implements the Orchestrator (C5): the top-level
// entry point that converts natural-language input and conversation
// context into a concrete handler call and a structured response (spec
// §4.5).
package orchestrator

import "time"

// Thought is one ReasoningChain entry, appended by every processing stage
// (spec §4.5).
type Thought struct {
	Stage          string        `json:"stage"`
	InputsSummary  string        `json:"inputs_summary"`
	OutputsSummary string        `json:"outputs_summary"`
	Latency        time.Duration `json:"latency_ns"`
	Confidence     float64       `json:"confidence"`
}

// ReasoningChain is the ordered Thought log for one orchestrate() call.
type ReasoningChain struct {
	Thoughts []Thought `json:"thoughts"`
}

func (c *ReasoningChain) append(stage, in, out string, latency time.Duration, confidence float64) {
	c.Thoughts = append(c.Thoughts, Thought{
		Stage:          stage,
		InputsSummary:  in,
		OutputsSummary: out,
		Latency:        latency,
		Confidence:     confidence,
	})
}

// AmbiguityType enumerates the five ambiguity rules from spec §4.5 stage 5.
type AmbiguityType string

const (
	AmbiguityPropertyTypeMissing   AmbiguityType = "property_type_missing"
	AmbiguityMultipleIntents       AmbiguityType = "multiple_intents"
	AmbiguityAmenityAmbiguous      AmbiguityType = "amenity_ambiguous"
	AmbiguityPriceRangeUnclear     AmbiguityType = "price_range_unclear"
	AmbiguityLocationUnderspecified AmbiguityType = "location_underspecified"
)

// AmbiguityItem is one detected ambiguity with its clarifying question.
type AmbiguityItem struct {
	Type     AmbiguityType `json:"type"`
	Question string        `json:"question"`
	Options  []string      `json:"options"`
	Critical bool          `json:"critical"`
}

// AmbiguityResult is the stage-5 outcome.
type AmbiguityResult struct {
	Items             []AmbiguityItem
	NeedsClarification bool
}

// Intent enumerates the closed set from spec §4.5 stage 6.
type Intent string

const (
	IntentSearch          Intent = "search"
	IntentPropertyDetail   Intent = "property_detail"
	IntentCompare          Intent = "compare"
	IntentPriceAnalysis    Intent = "price_analysis"
	IntentInvestmentAdvice Intent = "investment_advice"
	IntentLocationInsights Intent = "location_insights"
	IntentLegalGuidance    Intent = "legal_guidance"
	IntentChat             Intent = "chat"
	IntentUnknown          Intent = "unknown"
)

// Entities is the structured extraction accompanying intent
// classification (spec §4.5 stage 6).
type Entities struct {
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Bedrooms *int     `json:"bedrooms,omitempty"`
	Location string   `json:"location,omitempty"`
	Features []string `json:"features,omitempty"`
}

// IntentResult is the stage-6 outcome.
type IntentResult struct {
	Intent     Intent
	Confidence float64
	Entities   Entities
}

// Component is a structured UI descriptor (spec §6 components[]).
type Component struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// HandlerResult is what every handler (search, detail, compare, chat, ...)
// returns to stage 8 (spec §4.5 stage 8).
type HandlerResult struct {
	Text       string
	Components []Component
	Sources    []string
	Confidence float64
}

// Request is POST /orchestrate's body (spec §6).
type Request struct {
	UserID         string                 `json:"user_id"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	Query          string                 `json:"query"`
	Language       string                 `json:"language,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Files          []string               `json:"files,omitempty"`
}

// Response is POST /orchestrate's response (spec §6).
type Response struct {
	Intent             Intent          `json:"intent"`
	Confidence         float64         `json:"confidence"`
	ResponseText       string          `json:"response_text"`
	NeedsClarification bool            `json:"needs_clarification,omitempty"`
	Clarifications     []AmbiguityItem `json:"clarifications,omitempty"`
	Components         []Component     `json:"components,omitempty"`
	Sources            []string        `json:"sources,omitempty"`
	ServiceUsed        string          `json:"service_used"`
	ExecutionTimeMs    int64           `json:"execution_time_ms"`
	ReasoningChain     *ReasoningChain `json:"reasoning_chain,omitempty"`
}
