package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/learning-at-home/dalle/config"
	apperrors "github.com/learning-at-home/dalle/internal/errors"
)

func TestBuildMetricsSinkDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		cfg  config.ObservabilityMetricsConfig
	}{
		{
			name: "disabled",
			cfg: config.ObservabilityMetricsConfig{
				Enabled:       false,
				StatsdAddress: "127.0.0.1:8125",
			},
		},
		{
			name: "no address",
			cfg: config.ObservabilityMetricsConfig{
				Enabled: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sink := BuildMetricsSink(tt.cfg, logger); sink != nil {
				t.Fatalf("BuildMetricsSink() = %v, want nil", sink)
			}
		})
	}
}

func TestBuildMetricsSinkEnabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sink := BuildMetricsSink(config.ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: "127.0.0.1:8125",
		Prefix:        "dalle",
	}, logger)
	if sink == nil {
		t.Fatal("expected a statsd client")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close sink: %v", err)
	}
}

func TestBuildAuthorizer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	valid := config.AuthConfig{
		ServerURL:       "https://auth.example.org",
		Organization:    "learning-at-home",
		Model:           "dalle-mini",
		UserAccessToken: "hf_abc123",
	}

	container, err := BuildAuthorizer(valid, logger, nil)
	if err != nil {
		t.Fatalf("BuildAuthorizer() error = %v", err)
	}
	if container.Authorizer == nil {
		t.Fatal("expected an authorizer")
	}
	if len(container.Identity.PublicKeyBytes()) == 0 {
		t.Fatal("expected a peer public key")
	}
}

func TestBuildAuthorizerRejectsMissingCredential(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.AuthConfig{
		ServerURL:    "https://auth.example.org",
		Organization: "learning-at-home",
		Model:        "dalle-mini",
	}

	if _, err := BuildAuthorizer(cfg, logger, nil); !apperrors.IsInvalidCredentials(err) {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
}
