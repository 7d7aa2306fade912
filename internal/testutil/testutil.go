// Package testutil provides a fixture authority for tests: an in-process
// HTTP endpoint that issues genuinely signed access tokens, plus helpers
// for fabricating tokens directly.
package testutil

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/learning-at-home/dalle/internal/domain/token"
)

// Authority is a fake token authority backed by a real RSA signing key.
type Authority struct {
	t *testing.T

	signer    *rsa.PrivateKey
	publicKey []byte

	// Username granted on join.
	Username string

	// Coordinator address handed out in responses.
	CoordinatorIP   string
	CoordinatorPort int

	// TokenTTL controls issued token lifetimes.
	TokenTTL time.Duration

	// ExpectedCredential, when set, makes the handler reject other bearer
	// credentials with 401.
	ExpectedCredential string

	mu    sync.Mutex
	joins int
}

// NewAuthority creates a fixture authority with a fresh signing key.
func NewAuthority(t *testing.T) *Authority {
	t.Helper()

	signer, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate authority key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(&signer.PublicKey)
	if err != nil {
		t.Fatalf("encode authority key: %v", err)
	}

	return &Authority{
		t:               t,
		signer:          signer,
		publicKey:       bytes.TrimSpace(ssh.MarshalAuthorizedKey(sshPub)),
		Username:        "test-user",
		CoordinatorIP:   "10.0.0.7",
		CoordinatorPort: 31337,
		TokenTTL:        time.Hour,
	}
}

// PublicKeyBytes returns the authority's verification key in OpenSSH form.
func (a *Authority) PublicKeyBytes() []byte {
	return a.publicKey
}

// Sign returns the base64 transport form of an RSA-PSS/SHA-256 signature
// over payload.
func (a *Authority) Sign(payload []byte) []byte {
	a.t.Helper()

	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPSS(rand.Reader, a.signer, crypto.SHA256, digest[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: crypto.SHA256})
	if err != nil {
		a.t.Fatalf("sign payload: %v", err)
	}
	return []byte(base64.StdEncoding.EncodeToString(sig))
}

// IssueToken fabricates a signed token for a peer key with an arbitrary
// expiration string, letting tests produce expired or malformed tokens.
func (a *Authority) IssueToken(peerPublicKey []byte, expirationTime string) token.AccessToken {
	a.t.Helper()

	issued := token.AccessToken{
		Username:       a.Username,
		PublicKey:      peerPublicKey,
		ExpirationTime: expirationTime,
	}
	issued.Signature = a.Sign(issued.SignedPayload())
	return issued
}

// JoinCount reports how many join requests the handler has served.
func (a *Authority) JoinCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.joins
}

// Start runs the authority behind an httptest server, closed on test cleanup.
func (a *Authority) Start() *httptest.Server {
	a.t.Helper()
	server := httptest.NewServer(http.HandlerFunc(a.handleJoin))
	a.t.Cleanup(server.Close)
	return server
}

// handleJoin serves the join/refresh endpoint: validates the request shape
// and answers with a freshly signed token bound to the presented peer key.
func (a *Authority) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Query().Get("organization_name") == "" || r.URL.Query().Get("model_name") == "" {
		http.Error(w, "missing organization_name or model_name", http.StatusUnprocessableEntity)
		return
	}
	if a.ExpectedCredential != "" && r.Header.Get("Authorization") != "Bearer "+a.ExpectedCredential {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ExperimentJoinInput struct {
			PeerPublicKey string `json:"peer_public_key"`
		} `json:"experiment_join_input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ExperimentJoinInput.PeerPublicKey == "" {
		http.Error(w, "malformed join input", http.StatusUnprocessableEntity)
		return
	}

	a.mu.Lock()
	a.joins++
	a.mu.Unlock()

	expiration := token.FormatExpiration(time.Now().Add(a.TokenTTL))
	issued := a.IssueToken([]byte(body.ExperimentJoinInput.PeerPublicKey), expiration)

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"auth_server_public_key": string(a.publicKey),
		"coordinator_ip":         a.CoordinatorIP,
		"coordinator_port":       a.CoordinatorPort,
		"hivemind_access": map[string]any{
			"username":        issued.Username,
			"peer_public_key": string(issued.PublicKey),
			"expiration_time": issued.ExpirationTime,
			"signature":       string(issued.Signature),
		},
	})
	if err != nil {
		a.t.Errorf("encode join response: %v", err)
	}
}

// Handler exposes the join endpoint for wrapping in custom servers.
func (a *Authority) Handler() http.HandlerFunc {
	return a.handleJoin
}

// StaticHandler returns a handler that answers every request with the given
// status and body, for exercising error classification.
func StaticHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// FlakyHandler fails the first `failures` requests with 503 and then
// delegates to the fixture authority, for exercising retry behaviour.
// Increments *requests on every call; callers drive sequential traffic.
func FlakyHandler(requests *int, failures int, a *Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*requests++
		if *requests <= failures {
			http.Error(w, "authority warming up", http.StatusServiceUnavailable)
			return
		}
		a.handleJoin(w, r)
	}
}
