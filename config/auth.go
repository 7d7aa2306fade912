package config

import (
	"strings"
	"time"
)

// Defaults applied by Sanitize when values are missing or out of range.
const (
	defaultServerURL    = "https://collaborative-training-auth.huggingface.co"
	defaultMaxAttempts  = 10
	defaultInitialDelay = time.Second
	defaultMaxLatency   = time.Minute
	defaultHTTPTimeout  = 30 * time.Second
)

// AuthConfig groups authority and token-refresh configuration.
type AuthConfig struct {
	// ServerURL is the remote token authority's root URL.
	ServerURL string `env:"AUTH_SERVER_URL" envDefault:"https://collaborative-training-auth.huggingface.co"`

	// Organization and Model identify the collaborative experiment to join.
	Organization string `env:"HF_ORGANIZATION_NAME"`
	Model        string `env:"HF_MODEL_NAME"`

	// UserAccessToken is the caller's bearer credential for the authority.
	UserAccessToken string `env:"HF_USER_ACCESS_TOKEN"`

	// MaxAttempts bounds join retries, counting the first attempt.
	MaxAttempts int `env:"AUTH_MAX_ATTEMPTS" envDefault:"10"`

	// InitialDelay is the base backoff delay; it doubles per retry.
	InitialDelay time.Duration `env:"AUTH_RETRY_INITIAL_DELAY" envDefault:"1s"`

	// MaxLatency is the safety margin before expiry at which tokens are
	// refreshed.
	MaxLatency time.Duration `env:"AUTH_TOKEN_MAX_LATENCY" envDefault:"1m"`

	// HTTPTimeout bounds each exchange with the authority.
	HTTPTimeout time.Duration `env:"AUTH_HTTP_TIMEOUT" envDefault:"30s"`
}

// Sanitize normalises values loaded from env and enforces safe ranges.
// Emptiness of Organization, Model, and UserAccessToken is not checked
// here; the client and service constructors reject those with typed errors.
func (c *AuthConfig) Sanitize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	if c.ServerURL == "" {
		c.ServerURL = defaultServerURL
	}

	c.Organization = strings.TrimSpace(c.Organization)
	c.Model = strings.TrimSpace(c.Model)

	if c.MaxAttempts < 1 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = defaultInitialDelay
	}
	if c.MaxLatency <= 0 {
		c.MaxLatency = defaultMaxLatency
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
}
