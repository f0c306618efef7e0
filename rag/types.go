// Package rag implements the RAG Pipeline (C4): a composable chain of
// operators that turns a retrieval-intent request into a grounded,
// source-attributed answer (spec §4.4).
package rag

import "time"

// Thought is one ReasoningChain entry: every operator appends one with its
// inputs/outputs summarized, latency and a confidence score (spec §4.4).
type Thought struct {
	Stage          string        `json:"stage"`
	InputsSummary  string        `json:"inputs_summary"`
	OutputsSummary string        `json:"outputs_summary"`
	Latency        time.Duration `json:"latency_ns"`
	Confidence     float64       `json:"confidence"`
}

// ReasoningChain is the ordered Thought log for one pipeline run.
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

// Document is a retrieval candidate flowing through the chain.
type Document struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Request is the pipeline's input (spec §4.4's "retrieval-intent
// request"): a cleaned query plus the filters and history the Orchestrator
// has already assembled (spec §4.5 stage 8).
type Request struct {
	Query    string                 `json:"query"`
	Filters  map[string]interface{} `json:"filters"`
	History  []HistoryMessage       `json:"history"`
	Language string                 `json:"language"`
	Mode     string                 `json:"mode"` // "search", "compare", "investment_advice", "location_insights"
	Limit    int                    `json:"limit"`
}

type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the pipeline's output.
type Response struct {
	Answer         string           `json:"answer"`
	Sources        []Document       `json:"sources"`
	Confidence     float64          `json:"confidence"`
	ReasoningChain ReasoningChain   `json:"reasoning_chain"`
}
