package service

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learning-at-home/dalle/internal/adapters/authority"
	"github.com/learning-at-home/dalle/internal/adapters/keys"
	apperrors "github.com/learning-at-home/dalle/internal/errors"
	"github.com/learning-at-home/dalle/internal/testutil"
)

// buildAuthorizer wires a real authority client against the given base URL,
// exactly the way bootstrap does in production.
func buildAuthorizer(t *testing.T, baseURL string, identity *keys.LocalIdentity) *Authorizer {
	t.Helper()

	client, err := authority.NewClient(authority.Config{
		BaseURL:    baseURL,
		Credential: "hf_secret",
		ParseKey:   keys.Parse,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)

	auth, err := NewAuthorizer(AuthorizerOptions{
		Client:         client,
		Organization:   "bigscience",
		Model:          "dalle",
		LocalPublicKey: identity.PublicKeyBytes(),
		MaxAttempts:    2,
		InitialDelay:   time.Millisecond,
	})
	require.NoError(t, err)
	return auth
}

func TestEndToEndJoinAndValidate(t *testing.T) {
	fixture := testutil.NewAuthority(t)
	fixture.ExpectedCredential = "hf_secret"
	server := fixture.Start()

	identity, err := keys.GenerateIdentity()
	require.NoError(t, err)

	auth := buildAuthorizer(t, server.URL, identity)

	tok, err := auth.GetToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-user", tok.Username)
	assert.Equal(t, string(identity.PublicKeyBytes()), string(tok.PublicKey))
	assert.True(t, auth.IsTokenValid(tok), "freshly issued token must verify")
	assert.False(t, auth.DoesTokenNeedRefreshing(tok), "hour-long token must not need refresh")
	assert.Equal(t, 1, fixture.JoinCount())

	// A second request reuses the cached token.
	again, err := auth.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tok, again)
	assert.Equal(t, 1, fixture.JoinCount())
}

func TestEndToEndShortLivedTokenTriggersRejoin(t *testing.T) {
	fixture := testutil.NewAuthority(t)
	fixture.TokenTTL = 30 * time.Second // inside the refresh margin
	server := fixture.Start()

	identity, err := keys.GenerateIdentity()
	require.NoError(t, err)

	auth := buildAuthorizer(t, server.URL, identity)

	tok, err := auth.GetToken(context.Background())
	require.NoError(t, err)
	assert.True(t, auth.DoesTokenNeedRefreshing(tok))

	_, err = auth.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fixture.JoinCount(), "short-lived token must force a re-join")
}

func TestEndToEndUnauthorizedPropagates(t *testing.T) {
	fixture := testutil.NewAuthority(t)
	fixture.ExpectedCredential = "somebody-else"
	server := fixture.Start()

	identity, err := keys.GenerateIdentity()
	require.NoError(t, err)

	auth := buildAuthorizer(t, server.URL, identity)

	_, err = auth.GetToken(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotInAllowlist(err), "401 must surface as NotInAllowlist, got %v", err)
	assert.Equal(t, 0, fixture.JoinCount(), "rejected join must not be counted or retried")
}

func TestEndToEndTamperedTokenRejected(t *testing.T) {
	fixture := testutil.NewAuthority(t)
	server := fixture.Start()

	identity, err := keys.GenerateIdentity()
	require.NoError(t, err)

	auth := buildAuthorizer(t, server.URL, identity)

	tok, err := auth.GetToken(context.Background())
	require.NoError(t, err)

	tampered := tok
	tampered.Username = "mallory"
	assert.False(t, auth.IsTokenValid(tampered), "token bound to another username must not verify")

	replayed := tok
	replayed.PublicKey = []byte("ssh-rsa AAAB someone-else")
	assert.False(t, auth.IsTokenValid(replayed), "token replayed for a different peer key must not verify")
}

func TestEndToEndSurvivesFlakyAuthority(t *testing.T) {
	fixture := testutil.NewAuthority(t)

	var requests int
	flaky := httptest.NewServer(testutil.FlakyHandler(&requests, 2, fixture))
	t.Cleanup(flaky.Close)

	identity, err := keys.GenerateIdentity()
	require.NoError(t, err)

	client, err := authority.NewClient(authority.Config{
		BaseURL:    flaky.URL,
		Credential: "hf_secret",
		ParseKey:   keys.Parse,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)

	auth, err := NewAuthorizer(AuthorizerOptions{
		Client:         client,
		Organization:   "bigscience",
		Model:          "dalle",
		LocalPublicKey: identity.PublicKeyBytes(),
		MaxAttempts:    5,
		InitialDelay:   time.Millisecond,
	})
	require.NoError(t, err)

	tok, err := auth.GetToken(context.Background())
	require.NoError(t, err)
	assert.True(t, auth.IsTokenValid(tok))
	assert.Equal(t, 3, requests, "two 503s then success")
}
