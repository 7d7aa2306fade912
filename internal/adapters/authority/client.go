// Package authority implements the join/refresh exchange against the
// remote token authority.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/learning-at-home/dalle/internal/domain/token"
	apperrors "github.com/learning-at-home/dalle/internal/errors"
	"github.com/learning-at-home/dalle/internal/ports"
)

// joinPath is the authority's combined join/refresh endpoint.
const joinPath = "/api/experiments/join"

// maxErrorBody bounds how much of an error response is read for diagnostics.
const maxErrorBody = 4 << 10

// Config captures runtime configuration for the authority client.
type Config struct {
	// BaseURL is the authority's root URL.
	BaseURL string

	// Credential is the caller's bearer credential, sent on every request.
	Credential string

	// ParseKey deserializes the authority's verification key from the
	// join response.
	ParseKey ports.PublicKeyParser

	// Timeout bounds each HTTP exchange. Defaults to 30s.
	Timeout time.Duration

	// Client overrides the HTTP client; when nil one is built with the
	// bearer credential injected via an oauth2 static token source.
	Client *http.Client

	// Logger receives grant and failure diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client performs authenticated join/refresh exchanges. Safe for
// concurrent use.
type Client struct {
	baseURL  string
	parseKey ports.PublicKeyParser
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.AuthorityClient = (*Client)(nil)

// NewClient builds an authority client. The credential is validated here so
// a malformed one fails construction rather than poisoning the retry loop.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("authority base URL is required")
	}
	if cfg.ParseKey == nil {
		return nil, errors.New("public key parser is required")
	}

	credential := strings.TrimSpace(cfg.Credential)
	if credential == "" {
		return nil, apperrors.InvalidCredentials("user access token is required")
	}
	if credential != cfg.Credential {
		return nil, apperrors.InvalidCredentials("user access token has surrounding whitespace")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		base := &http.Client{Timeout: timeout}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential}))
		hc.Timeout = timeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  baseURL,
		parseKey: cfg.ParseKey,
		client:   hc,
		logger:   logger,
	}, nil
}

// joinRequestBody is the authority's expected request document.
type joinRequestBody struct {
	ExperimentJoinInput struct {
		PeerPublicKey string `json:"peer_public_key"`
	} `json:"experiment_join_input"`
}

// joinResponseBody is the authority's success response document.
type joinResponseBody struct {
	AuthServerPublicKey string `json:"auth_server_public_key"`
	CoordinatorIP       string `json:"coordinator_ip"`
	CoordinatorPort     int    `json:"coordinator_port"`
	HivemindAccess      struct {
		Username       string `json:"username"`
		PeerPublicKey  string `json:"peer_public_key"`
		ExpirationTime string `json:"expiration_time"`
		Signature      string `json:"signature"`
	} `json:"hivemind_access"`
}

// Join performs one authenticated PUT against the join/refresh endpoint.
// A 401 is a permanent not-in-allowlist failure; every other HTTP error,
// transport failure, or malformed response is transient.
func (c *Client) Join(ctx context.Context, in ports.JoinInput) (ports.JoinResult, error) {
	if strings.TrimSpace(in.Organization) == "" {
		return ports.JoinResult{}, apperrors.InvalidCredentials("organization name is required")
	}
	if strings.TrimSpace(in.Model) == "" {
		return ports.JoinResult{}, apperrors.InvalidCredentials("model name is required")
	}
	if len(in.PeerPublicKey) == 0 {
		return ports.JoinResult{}, apperrors.InvalidCredentials("peer public key is required")
	}

	requestID := uuid.NewString()

	var body joinRequestBody
	body.ExperimentJoinInput.PeerPublicKey = string(in.PeerPublicKey)
	encoded, err := json.Marshal(body)
	if err != nil {
		return ports.JoinResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode join request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+joinPath, bytes.NewReader(encoded))
	if err != nil {
		return ports.JoinResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create join request")
	}
	req.Header.Set("Content-Type", "application/json")
	query := url.Values{}
	query.Set("organization_name", in.Organization)
	query.Set("model_name", in.Model)
	req.URL.RawQuery = query.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.JoinResult{}, apperrors.Wrap(err, apperrors.ErrCodeTransient, "join request failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close join response body failed", "error", cerr, "request_id", requestID)
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		return ports.JoinResult{}, apperrors.NotInAllowlistf(
			"not in allowlist for organization %q and model %q", in.Organization, in.Model)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ports.JoinResult{}, apperrors.Transientf(
			"authority returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var payload joinResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ports.JoinResult{}, apperrors.Wrap(err, apperrors.ErrCodeTransient, "decode join response")
	}

	return c.buildResult(ctx, payload, requestID)
}

// buildResult turns a decoded response into authority state plus a token.
// Malformed fields are transient: the authority rejecting or garbling a
// response must not crash the retry loop.
func (c *Client) buildResult(ctx context.Context, payload joinResponseBody, requestID string) (ports.JoinResult, error) {
	authorityKey, err := c.parseKey([]byte(payload.AuthServerPublicKey))
	if err != nil {
		return ports.JoinResult{}, apperrors.Wrap(err, apperrors.ErrCodeTransient, "parse authority public key")
	}

	access := payload.HivemindAccess
	if _, err := token.ParseExpiration(access.ExpirationTime); err != nil {
		return ports.JoinResult{}, apperrors.Wrap(err, apperrors.ErrCodeTransient, "malformed token expiration")
	}

	issued := token.AccessToken{
		Username:       access.Username,
		PublicKey:      []byte(access.PeerPublicKey),
		ExpirationTime: access.ExpirationTime,
		Signature:      []byte(access.Signature),
	}

	c.logger.InfoContext(ctx, "access granted",
		"username", issued.Username,
		"expiration_time", issued.ExpirationTime,
		"coordinator", payload.CoordinatorIP,
		"request_id", requestID,
	)

	return ports.JoinResult{
		AuthorityKey: authorityKey,
		Coordinator: ports.Coordinator{
			Host: payload.CoordinatorIP,
			Port: payload.CoordinatorPort,
		},
		Token: issued,
	}, nil
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
}
