// Command rag runs the RAG Pipeline (C4) as its own process.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/rag"
	"github.com/reai-platform/core/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	logging := core.DefaultLoggingConfig()
	dev := core.DefaultDevelopmentConfig()
	logger := core.NewProductionLogger(logging, dev, "rag")

	port := core.EnvInt("PORT", 8083)
	cfg := rag.DefaultConfig()

	llmGatewayURL := core.EnvString("LLM_GATEWAY_URL", "http://localhost:8081")
	retrievalGatewayURL := core.EnvString("RETRIEVAL_GATEWAY_URL", "http://localhost:8082")
	chatModel := core.EnvString("LLM_PRIMARY_MODEL", "primary-chat")

	httpClient := &http.Client{Timeout: core.DefaultGatewayDeadline}
	llmClient := rag.NewHTTPLLMClient(llmGatewayURL, chatModel, httpClient)
	retrievalClient := rag.NewHTTPRetrievalClient(retrievalGatewayURL, httpClient)
	pipeline := rag.NewPipeline(llmClient, retrievalClient, cfg, logger)

	telemetryProvider, err := telemetry.EnableTelemetry("rag", "", logger)
	if err != nil {
		logger.Error("rag: telemetry setup failed", map[string]interface{}{"error": err.Error()})
	}

	svc := rag.NewService(pipeline, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx, port); err != nil {
		logger.Error("rag: failed to start", map[string]interface{}{"error": err.Error()})
		return core.ExitInternalError
	}

	waitForShutdown(logger)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := svc.Stop(stopCtx); err != nil {
		logger.Error("rag: graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		return core.ExitInternalError
	}
	if shutdowner, ok := telemetryProvider.(interface{ Shutdown(context.Context) error }); ok {
		_ = shutdowner.Shutdown(stopCtx)
	}
	return core.ExitSuccess
}

func waitForShutdown(logger core.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("rag: shutdown signal received", nil)
}
