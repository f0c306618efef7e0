// Command registry runs the Service Registry (C1) as its own process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reai-platform/core/core"
	"github.com/reai-platform/core/registry"
	"github.com/reai-platform/core/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	logging := core.DefaultLoggingConfig()
	dev := core.DefaultDevelopmentConfig()
	logger := core.NewProductionLogger(logging, dev, "registry")

	port := core.EnvInt("PORT", 8080)
	cfg := registry.DefaultConfig()

	telemetryProvider, err := telemetry.EnableTelemetry("registry", "", logger)
	if err != nil {
		logger.Error("registry: telemetry setup failed", map[string]interface{}{"error": err.Error()})
	}

	svc := registry.NewService(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx, port); err != nil {
		logger.Error("registry: failed to start", map[string]interface{}{"error": err.Error()})
		return core.ExitInternalError
	}

	waitForShutdown(logger)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := svc.Stop(stopCtx); err != nil {
		logger.Error("registry: graceful shutdown failed", map[string]interface{}{"error": err.Error()})
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
	logger.Info("registry: shutdown signal received", nil)
}
