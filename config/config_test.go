package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_SERVER_URL", "https://auth.example.org")
	t.Setenv("HF_ORGANIZATION_NAME", "learning-at-home")
	t.Setenv("HF_MODEL_NAME", "dalle-mini")
	t.Setenv("HF_USER_ACCESS_TOKEN", "hf_abc123")
	t.Setenv("AUTH_MAX_ATTEMPTS", "5")
	t.Setenv("AUTH_RETRY_INITIAL_DELAY", "250ms")
	t.Setenv("AUTH_TOKEN_MAX_LATENCY", "2m")
	t.Setenv("AUTH_HTTP_TIMEOUT", "10s")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		ServerURL:       "https://auth.example.org",
		Organization:    "learning-at-home",
		Model:           "dalle-mini",
		UserAccessToken: "hf_abc123",
		MaxAttempts:     5,
		InitialDelay:    250 * time.Millisecond,
		MaxLatency:      2 * time.Minute,
		HTTPTimeout:     10 * time.Second,
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.ServerURL != "https://collaborative-training-auth.huggingface.co" {
		t.Errorf("unexpected default server URL: %q", cfg.Auth.ServerURL)
	}
	if cfg.Auth.MaxAttempts != 10 {
		t.Errorf("expected default max attempts 10, got %d", cfg.Auth.MaxAttempts)
	}
	if cfg.Auth.InitialDelay != time.Second {
		t.Errorf("expected default initial delay 1s, got %s", cfg.Auth.InitialDelay)
	}
	if cfg.Auth.MaxLatency != time.Minute {
		t.Errorf("expected default max latency 1m, got %s", cfg.Auth.MaxLatency)
	}
	if cfg.Auth.HTTPTimeout != 30*time.Second {
		t.Errorf("expected default HTTP timeout 30s, got %s", cfg.Auth.HTTPTimeout)
	}
	if cfg.IsDev {
		t.Errorf("expected dev mode to default to false")
	}
}

func TestAuthConfig_Sanitize(t *testing.T) {
	cfg := AuthConfig{
		ServerURL:    " https://auth.example.org/ ",
		Organization: " org ",
		Model:        " model ",
		MaxAttempts:  0,
		InitialDelay: -time.Second,
		MaxLatency:   0,
		HTTPTimeout:  0,
	}

	cfg.Sanitize()

	if cfg.ServerURL != "https://auth.example.org" {
		t.Errorf("expected trailing slash and whitespace stripped, got %q", cfg.ServerURL)
	}
	if cfg.Organization != "org" || cfg.Model != "model" {
		t.Errorf("expected organization and model trimmed, got %q %q", cfg.Organization, cfg.Model)
	}
	if cfg.MaxAttempts != 10 {
		t.Errorf("expected max attempts restored to default, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != time.Second {
		t.Errorf("expected initial delay restored to default, got %s", cfg.InitialDelay)
	}
	if cfg.MaxLatency != time.Minute {
		t.Errorf("expected max latency restored to default, got %s", cfg.MaxLatency)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected HTTP timeout restored to default, got %s", cfg.HTTPTimeout)
	}
}

func TestAuthConfig_SanitizeEmptyServerURL(t *testing.T) {
	cfg := AuthConfig{ServerURL: "  "}
	cfg.Sanitize()
	if cfg.ServerURL != defaultServerURL {
		t.Fatalf("expected empty server URL replaced with default, got %q", cfg.ServerURL)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:8125 ",
		Prefix:        " dalle ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:8125" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Prefix != "dalle" {
		t.Fatalf("expected prefix to be trimmed, got %q", cfg.Prefix)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Fatalf("expected NODE_ENV=development to enable dev mode")
	}
}
