package rag

import "github.com/reai-platform/core/core"

// Config controls which operators run and their thresholds (spec §4.4,
// env vars per spec §6).
type Config struct {
	RetrievalLimit     int
	GraderThreshold    float64
	ReflectionThreshold float64
	EnableHyDE         bool
	EnableDecomposition bool
	TopKForGeneration  int
	RegenerationBudget int
}

// DefaultConfig applies spec §4.4's defaults, then env overrides (spec §6:
// RAG_RETRIEVAL_LIMIT, RAG_GRADER_THRESHOLD, RAG_REFLECTION_THRESHOLD,
// RAG_ENABLE_HYDE, RAG_ENABLE_DECOMPOSITION).
func DefaultConfig() Config {
	return Config{
		RetrievalLimit:      core.EnvInt("RAG_RETRIEVAL_LIMIT", 20),
		GraderThreshold:     core.EnvFloat("RAG_GRADER_THRESHOLD", 0.5),
		ReflectionThreshold: core.EnvFloat("RAG_REFLECTION_THRESHOLD", 0.7),
		EnableHyDE:          core.EnvBool("RAG_ENABLE_HYDE", true),
		EnableDecomposition: core.EnvBool("RAG_ENABLE_DECOMPOSITION", true),
		TopKForGeneration:   5,
		RegenerationBudget:  1,
	}
}
