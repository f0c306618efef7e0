package core

import "time"

// Shared environment variable names (spec §6).
const (
	EnvRegistryURL         = "REGISTRY_URL"
	EnvLLMGatewayURL       = "LLM_GATEWAY_URL"
	EnvRetrievalGatewayURL = "RETRIEVAL_GATEWAY_URL"
	EnvPort                = "PORT"
	EnvDevMode             = "DEV_MODE"
)

// Default deadlines from spec §5.
const (
	DefaultOrchestrateDeadline = 90 * time.Second
	DefaultGatewayDeadline     = 30 * time.Second
)

// Process exit codes per spec §6.
const (
	ExitSuccess       = 0
	ExitConfigError   = 2
	ExitInternalError = 70
)
