// Command retrieval runs the Retrieval Gateway (C3) as its own process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/retrieval"
	"github.com/reai-platform/core/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	logging := core.DefaultLoggingConfig()
	dev := core.DefaultDevelopmentConfig()
	logger := core.NewProductionLogger(logging, dev, "retrieval")

	port := core.EnvInt("PORT", 8082)
	cfg := retrieval.DefaultConfig()

	corpusPath := core.EnvString("PROPERTIES_DATA_PATH", "")
	var corpus *retrieval.Corpus
	if corpusPath != "" {
		loaded, err := retrieval.LoadCorpus(corpusPath)
		if err != nil {
			logger.Error("retrieval: failed to load corpus", map[string]interface{}{"error": err.Error()})
			return core.ExitConfigError
		}
		corpus = loaded
	} else {
		corpus = retrieval.NewCorpus(nil)
	}

	telemetryProvider, err := telemetry.EnableTelemetry("retrieval", "", logger)
	if err != nil {
		logger.Error("retrieval: telemetry setup failed", map[string]interface{}{"error": err.Error()})
	}

	svc := retrieval.NewService(cfg, corpus, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx, port); err != nil {
		logger.Error("retrieval: failed to start", map[string]interface{}{"error": err.Error()})
		return core.ExitInternalError
	}

	waitForShutdown(logger)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := svc.Stop(stopCtx); err != nil {
		logger.Error("retrieval: graceful shutdown failed", map[string]interface{}{"error": err.Error()})
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
	logger.Info("retrieval: shutdown signal received", nil)
}
