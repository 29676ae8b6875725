package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Tyrowin/presencehub/internal/server"
	"github.com/Tyrowin/presencehub/internal/telemetry"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := server.NewConfigFromEnv()
	if err != nil {
		return err
	}

	logger, logCloser, err := telemetry.NewLogger(cfg.LogConfig())
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.TelemetryConfig(version))
	if err != nil {
		return fmt.Errorf("telemetry error: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(flushCtx); err != nil {
			logger.Error("failed to flush telemetry", "error", err)
		}
	}()

	instruments, err := telemetry.NewInstruments(providers.Meter())
	if err != nil {
		return fmt.Errorf("telemetry error: %w", err)
	}

	logger.Info("starting presence hub",
		"version", version,
		"port", cfg.Port,
		"origins", cfg.AllowedOrigins,
	)

	srv := server.New(*cfg,
		server.WithLogger(logger),
		server.WithInstruments(instruments),
		server.WithTracer(providers.Tracer()),
	)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("presence hub stopped")
	return nil
}
