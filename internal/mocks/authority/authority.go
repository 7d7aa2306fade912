// Package authority contains simple hand-written test doubles for the
// authority ports. These are lightweight and suitable for unit tests
// without codegen.
package authority

import (
	"context"
	"sync"

	"github.com/learning-at-home/dalle/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthorityClient = (*MockAuthorityClient)(nil)
	_ ports.PublicKey       = (*StaticPublicKey)(nil)
)

// MockAuthorityClient simulates the remote authority with a programmable
// Join. Safe for concurrent use; call and input history are recorded.
type MockAuthorityClient struct {
	// JoinFunc supplies the next Join result. When nil, Join returns the
	// zero JoinResult.
	JoinFunc func(ctx context.Context, in ports.JoinInput) (ports.JoinResult, error)

	mu     sync.Mutex
	calls  int
	inputs []ports.JoinInput
}

func (m *MockAuthorityClient) Join(ctx context.Context, in ports.JoinInput) (ports.JoinResult, error) {
	m.mu.Lock()
	m.calls++
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if m.JoinFunc != nil {
		return m.JoinFunc(ctx, in)
	}
	return ports.JoinResult{}, nil
}

// Calls reports how many times Join was invoked.
func (m *MockAuthorityClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastInput returns the most recent JoinInput, or the zero value before
// any call.
func (m *MockAuthorityClient) LastInput() ports.JoinInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return ports.JoinInput{}
	}
	return m.inputs[len(m.inputs)-1]
}

// StaticPublicKey is a PublicKey double with a fixed verification answer.
type StaticPublicKey struct {
	// VerifyResult is returned from every Verify call.
	VerifyResult bool

	// Encoded is returned from Bytes.
	Encoded []byte
}

func (k *StaticPublicKey) Verify(_, _ []byte) bool {
	return k.VerifyResult
}

func (k *StaticPublicKey) Bytes() []byte {
	return k.Encoded
}
