package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/learning-at-home/dalle/config"
	"github.com/learning-at-home/dalle/internal/bootstrap"
	"github.com/learning-at-home/dalle/internal/observability/statsd"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	metricsSink := bootstrap.BuildMetricsSink(cfg.Observability.Metrics, logger)
	defer closeMetricsSink(ctx, logger, metricsSink)

	var sink statsd.Sink
	if metricsSink != nil {
		sink = metricsSink
	}

	container, err := bootstrap.BuildAuthorizer(cfg.Auth, logger, sink)
	if err != nil {
		return err
	}

	tok, err := container.Authorizer.GetToken(ctx)
	if err != nil {
		return err
	}

	coordinator := container.Authorizer.Coordinator()
	logger.InfoContext(ctx, "authorized",
		"username", tok.Username,
		"expiration_time", tok.ExpirationTime,
		"coordinator", coordinator.Addr())

	return nil
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting dalle auth client",
		"server_url", cfg.Auth.ServerURL,
		"organization", cfg.Auth.Organization,
		"model", cfg.Auth.Model,
		"metrics_enabled", cfg.Observability.Metrics.IsEnabled())
}

func closeMetricsSink(ctx context.Context, logger *slog.Logger, sink *statsd.Client) {
	if sink == nil {
		return
	}
	if err := sink.Close(); err != nil {
		logger.ErrorContext(ctx, "close statsd client failed", "error", err)
	}
}
