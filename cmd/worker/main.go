// Command worker runs the analysis engine as a child process speaking
// newline-delimited JSON envelopes on stdin and stdout. Logs go to stderr.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"flowengine/infrastructure/config"
	"flowengine/infrastructure/di"
	"flowengine/interfaces/stdio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logger()

	logger.Info("Worker ready", zap.Int("workers", cfg.WorkerCount))

	transport := stdio.NewTransport(container.Pool, os.Stdout, logger)
	if err := transport.Serve(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}

	logger.Info("Worker stopped")
}
