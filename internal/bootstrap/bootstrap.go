package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/learning-at-home/dalle/config"
	"github.com/learning-at-home/dalle/internal/adapters/authority"
	"github.com/learning-at-home/dalle/internal/adapters/keys"
	"github.com/learning-at-home/dalle/internal/observability/statsd"
	"github.com/learning-at-home/dalle/internal/service"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// BuildMetricsSink creates a StatsD client when metrics are enabled.
// A nil sink is returned when metrics are disabled or the client cannot
// be created; callers treat nil as a no-op sink.
func BuildMetricsSink(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) *statsd.Client {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// AuthorizerContainer holds the authorizer and the peer identity it
// presents to the authority.
type AuthorizerContainer struct {
	Authorizer *service.Authorizer
	Identity   *keys.LocalIdentity
}

// BuildAuthorizer wires the authority client and token authorizer from
// configuration. A fresh peer identity is generated for the session.
func BuildAuthorizer(cfg config.AuthConfig, logger *slog.Logger, sink statsd.Sink) (*AuthorizerContainer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	identity, err := keys.GenerateIdentity()
	if err != nil {
		return nil, fmt.Errorf("generate peer identity: %w", err)
	}

	client, err := authority.NewClient(authority.Config{
		BaseURL:    cfg.ServerURL,
		Credential: cfg.UserAccessToken,
		ParseKey:   keys.Parse,
		Timeout:    cfg.HTTPTimeout,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create authority client: %w", err)
	}

	authorizer, err := service.NewAuthorizer(service.AuthorizerOptions{
		Client:         client,
		Organization:   cfg.Organization,
		Model:          cfg.Model,
		LocalPublicKey: identity.PublicKeyBytes(),
		Logger:         logger,
		Metrics:        sink,
		MaxAttempts:    cfg.MaxAttempts,
		InitialDelay:   cfg.InitialDelay,
		MaxLatency:     cfg.MaxLatency,
	})
	if err != nil {
		return nil, fmt.Errorf("create authorizer: %w", err)
	}

	return &AuthorizerContainer{
		Authorizer: authorizer,
		Identity:   identity,
	}, nil
}
