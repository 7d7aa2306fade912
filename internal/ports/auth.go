// Package ports defines interfaces (hexagonal ports) for the authorization
// core. Implementations live in internal/adapters; orchestration in
// internal/service.
package ports

import (
	"context"
	"net"
	"strconv"

	"github.com/learning-at-home/dalle/internal/domain/token"
)

// PublicKey is the verification capability the core consumes. The core
// never implements a signature algorithm itself.
type PublicKey interface {
	// Verify reports whether signature is a valid signature over data.
	// Any decode or verification failure degrades to false.
	Verify(data, signature []byte) bool

	// Bytes returns the key's canonical textual encoding.
	Bytes() []byte
}

// PublicKeyParser deserializes a public key from its textual encoding.
type PublicKeyParser func(data []byte) (PublicKey, error)

// JoinInput carries inputs for a join/refresh exchange with the authority.
type JoinInput struct {
	// Organization and Model identify the collaborative experiment.
	Organization string
	Model        string

	// PeerPublicKey is the textual encoding of the caller's own public
	// key, bound by the authority into the issued token.
	PeerPublicKey []byte
}

// Coordinator is the downstream service address the authority hands out.
// Opaque to this core; passed through to the surrounding system.
type Coordinator struct {
	Host string
	Port int
}

// Addr renders the coordinator as a dialable host:port string.
func (c Coordinator) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// JoinResult is the authority's answer to a successful join/refresh.
type JoinResult struct {
	// AuthorityKey is the authority's own verification key, authoritative
	// for all tokens issued in this session.
	AuthorityKey PublicKey

	// Coordinator is the downstream coordination endpoint.
	Coordinator Coordinator

	// Token is the issued access token.
	Token token.AccessToken
}

// AuthorityClient performs the join/refresh exchange against the remote
// authority.
type AuthorityClient interface {
	// Join obtains (or renews) an access token. A 401 from the authority
	// surfaces as a permanent not-in-allowlist error; other failures are
	// transient and eligible for retry.
	Join(ctx context.Context, in JoinInput) (JoinResult, error)
}

// TokenAuthorizer is the contract the surrounding system consumes to keep
// an always-valid credential at hand.
type TokenAuthorizer interface {
	// GetToken returns the held token, refreshing it first when it is
	// missing or due to expire within the refresh latency margin.
	GetToken(ctx context.Context) (token.AccessToken, error)

	// IsTokenValid verifies a token's signature and freshness against
	// locally held state; it never touches the network.
	IsTokenValid(t token.AccessToken) bool

	// DoesTokenNeedRefreshing reports whether the token expires within
	// the refresh latency margin.
	DoesTokenNeedRefreshing(t token.AccessToken) bool
}
