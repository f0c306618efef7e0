// Command orchestrator runs the Orchestrator (C5) as its own process: the
// top-level entry point that ties together C1-C4 (spec §4.5).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/knowledge"
	"github.com/reai-platform/core/orchestrator"
	"github.com/reai-platform/core/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	logging := core.DefaultLoggingConfig()
	dev := core.DefaultDevelopmentConfig()
	logger := core.NewProductionLogger(logging, dev, "orchestrator")

	port := core.EnvInt("PORT", 8084)
	cfg := orchestrator.DefaultServiceConfig()

	knowledgePath := core.EnvString("KNOWLEDGE_BASE_PATH", "knowledge/expansions.yaml")
	kb, err := knowledge.Load(knowledgePath)
	if err != nil {
		logger.Error("orchestrator: failed to load knowledge base", map[string]interface{}{"error": err.Error()})
		return core.ExitConfigError
	}

	telemetryProvider, err := telemetry.EnableTelemetry("orchestrator", "", logger)
	if err != nil {
		logger.Error("orchestrator: telemetry setup failed", map[string]interface{}{"error": err.Error()})
	}

	engine := orchestrator.BuildEngine(cfg, kb, logger)
	svc := orchestrator.NewService(engine, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx, port); err != nil {
		logger.Error("orchestrator: failed to start", map[string]interface{}{"error": err.Error()})
		return core.ExitInternalError
	}

	waitForShutdown(logger)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := svc.Stop(stopCtx); err != nil {
		logger.Error("orchestrator: graceful shutdown failed", map[string]interface{}{"error": err.Error()})
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
	logger.Info("orchestrator: shutdown signal received", nil)
}
