package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/learning-at-home/dalle/internal/domain/token"
	apperrors "github.com/learning-at-home/dalle/internal/errors"
	"github.com/learning-at-home/dalle/internal/observability/metrics"
	"github.com/learning-at-home/dalle/internal/observability/statsd"
	"github.com/learning-at-home/dalle/internal/ports"
	"github.com/learning-at-home/dalle/internal/retry"
)

// DefaultMaxLatency is the safety margin before actual expiry at which a
// token is considered due for refresh, covering clock skew and request
// latency.
const DefaultMaxLatency = time.Minute

// AuthorizerOptions groups dependencies for Authorizer.
type AuthorizerOptions struct {
	// Client performs the join/refresh exchange.
	Client ports.AuthorityClient

	// Organization and Model identify the experiment to join.
	Organization string
	Model        string

	// LocalPublicKey is the textual encoding of the peer's own public key,
	// presented on every join.
	LocalPublicKey []byte

	// Logger receives retry warnings and validation diagnostics.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is an optional sink for join/validation metrics.
	Metrics statsd.Sink

	// MaxAttempts and InitialDelay configure the retry policy around the
	// join exchange. Zero values use the retry package defaults.
	MaxAttempts  int
	InitialDelay time.Duration

	// MaxLatency is the refresh safety margin. Defaults to
	// DefaultMaxLatency.
	MaxLatency time.Duration

	// Now is a test seam; nil means time.Now in UTC.
	Now func() time.Time
}

// Authorizer keeps an always-valid access token at hand: it joins the
// experiment lazily on first use and re-joins whenever the held token is
// due to expire. The held (token, authority key, coordinator) triple is
// replaced atomically, so readers never observe a token paired with a
// stale authority key.
type Authorizer struct {
	client         ports.AuthorityClient
	organization   string
	model          string
	localPublicKey []byte
	logger         *slog.Logger
	sink           statsd.Sink
	retryOpts      retry.Options
	maxLatency     time.Duration
	now            func() time.Time

	// joins deduplicates concurrent refreshes: many callers, one exchange.
	joins singleflight.Group

	mu           sync.Mutex
	current      *token.AccessToken
	authorityKey ports.PublicKey
	coordinator  ports.Coordinator
}

var _ ports.TokenAuthorizer = (*Authorizer)(nil)

// NewAuthorizer constructs an Authorizer. The experiment identity is
// validated here; credential validation belongs to the authority client.
func NewAuthorizer(opts AuthorizerOptions) (*Authorizer, error) {
	if opts.Client == nil {
		return nil, errors.New("authority client is required")
	}
	if opts.Organization == "" {
		return nil, errors.New("organization name is required")
	}
	if opts.Model == "" {
		return nil, errors.New("model name is required")
	}
	if len(opts.LocalPublicKey) == 0 {
		return nil, errors.New("local public key is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxLatency := opts.MaxLatency
	if maxLatency <= 0 {
		maxLatency = DefaultMaxLatency
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Authorizer{
		client:         opts.Client,
		organization:   opts.Organization,
		model:          opts.Model,
		localPublicKey: opts.LocalPublicKey,
		logger:         logger,
		sink:           opts.Metrics,
		retryOpts: retry.Options{
			MaxAttempts:  opts.MaxAttempts,
			InitialDelay: opts.InitialDelay,
		},
		maxLatency: maxLatency,
		now:        now,
	}, nil
}

// GetToken returns the held token, joining (or re-joining) the experiment
// first when no token is held or the held one is due to expire within the
// refresh margin. Permanent failures from the authority surface
// synchronously; transient ones are retried with backoff before surfacing.
func (a *Authorizer) GetToken(ctx context.Context) (token.AccessToken, error) {
	if held, ok := a.freshToken(); ok {
		return held, nil
	}

	_, err, _ := a.joins.Do("join", func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// refreshed while this one waited for its turn.
		if _, ok := a.freshToken(); ok {
			return nil, nil
		}
		return nil, a.refresh(ctx)
	})
	if err != nil {
		return token.AccessToken{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return token.AccessToken{}, apperrors.Internalf("join reported success but no token is held")
	}
	return *a.current, nil
}

// freshToken returns the held token when it exists and is not yet due for
// refresh.
func (a *Authorizer) freshToken() (token.AccessToken, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil || a.DoesTokenNeedRefreshing(*a.current) {
		return token.AccessToken{}, false
	}
	return *a.current, true
}

// refresh runs one join exchange under the retry policy and installs the
// resulting authority state and token.
func (a *Authorizer) refresh(ctx context.Context) error {
	started := a.now()
	result, err := retry.CallWithRetries(ctx, a.logger, "join_experiment",
		func(ctx context.Context) (ports.JoinResult, error) {
			return a.client.Join(ctx, ports.JoinInput{
				Organization:  a.organization,
				Model:         a.model,
				PeerPublicKey: a.localPublicKey,
			})
		},
		a.retryOpts,
	)
	duration := a.now().Sub(started)
	if err != nil {
		outcome := metrics.ResultError
		if apperrors.IsNotInAllowlist(err) {
			outcome = metrics.ResultDenied
		}
		metrics.EmitJoin(a.sink, metrics.JoinMetric{Result: outcome, Duration: duration, Err: err})
		return err
	}
	metrics.EmitJoin(a.sink, metrics.JoinMetric{Result: metrics.ResultSuccess, Duration: duration})

	a.mu.Lock()
	a.current = &result.Token
	a.authorityKey = result.AuthorityKey
	a.coordinator = result.Coordinator
	a.mu.Unlock()
	return nil
}

// IsTokenValid verifies a token against the held authority key and checks
// its freshness. Purely local: no network calls. Every failure branch is
// logged and degrades to false rather than an error.
func (a *Authorizer) IsTokenValid(t token.AccessToken) bool {
	a.mu.Lock()
	key := a.authorityKey
	a.mu.Unlock()

	if key == nil {
		a.logger.Error("no authority public key held, token cannot be verified")
		metrics.EmitValidationFailure(a.sink, metrics.ReasonNoAuthorityKey)
		return false
	}

	if !key.Verify(t.SignedPayload(), t.Signature) {
		a.logger.Error("access token has invalid signature", "username", t.Username)
		metrics.EmitValidationFailure(a.sink, metrics.ReasonBadSignature)
		return false
	}

	expiration, err := token.ParseExpiration(t.ExpirationTime)
	if err != nil {
		if errors.Is(err, token.ErrTimezoneNotAllowed) {
			a.logger.Error("expected no timezone on token expiration time",
				"expiration_time", t.ExpirationTime)
			metrics.EmitValidationFailure(a.sink, metrics.ReasonTimezonePresent)
		} else {
			a.logger.Error("failed to parse token expiration time",
				"expiration_time", t.ExpirationTime, "error", err)
			metrics.EmitValidationFailure(a.sink, metrics.ReasonUnparseableExpiration)
		}
		return false
	}

	if expiration.Before(a.now()) {
		a.logger.Error("access token has expired",
			"username", t.Username, "expiration_time", t.ExpirationTime)
		metrics.EmitValidationFailure(a.sink, metrics.ReasonExpired)
		return false
	}

	return true
}

// DoesTokenNeedRefreshing reports whether the token expires strictly
// before now plus the refresh margin. A token whose expiration cannot be
// parsed needs refreshing.
func (a *Authorizer) DoesTokenNeedRefreshing(t token.AccessToken) bool {
	expiration, err := token.ParseExpiration(t.ExpirationTime)
	if err != nil {
		return true
	}
	return expiration.Before(a.now().Add(a.maxLatency))
}

// Coordinator returns the downstream coordination address from the most
// recent successful join. Zero value before the first join.
func (a *Authorizer) Coordinator() ports.Coordinator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.coordinator
}
