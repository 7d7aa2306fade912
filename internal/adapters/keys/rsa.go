// Package keys adapts Go's RSA primitives to the public-key capability the
// authorization core consumes. Keys travel in OpenSSH textual encoding;
// signatures are RSA-PSS over SHA-256, transported base64-encoded.
package keys

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/learning-at-home/dalle/internal/ports"
)

// RSAPublicKey wraps an RSA verification key parsed from its OpenSSH
// textual encoding.
type RSAPublicKey struct {
	key     *rsa.PublicKey
	encoded []byte
}

var _ ports.PublicKey = (*RSAPublicKey)(nil)

// ParseRSAPublicKey parses an OpenSSH-encoded ("ssh-rsa AAAA...") public key.
func ParseRSAPublicKey(data []byte) (*RSAPublicKey, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	cryptoKey, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("parse public key: %s key has no crypto form", pub.Type())
	}
	rsaKey, ok := cryptoKey.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("parse public key: expected RSA, got %s", pub.Type())
	}

	return &RSAPublicKey{
		key:     rsaKey,
		encoded: bytes.TrimSpace(ssh.MarshalAuthorizedKey(pub)),
	}, nil
}

// Parse is ParseRSAPublicKey shaped as the ports.PublicKeyParser capability.
func Parse(data []byte) (ports.PublicKey, error) {
	return ParseRSAPublicKey(data)
}

// Verify checks an RSA-PSS/SHA-256 signature over data. The signature is
// expected in its transport form (base64 text). Any decode or verification
// failure returns false.
func (k *RSAPublicKey) Verify(data, signature []byte) bool {
	raw, err := base64.StdEncoding.DecodeString(string(signature))
	if err != nil {
		return false
	}

	digest := sha256.Sum256(data)
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: crypto.SHA256}
	return rsa.VerifyPSS(k.key, crypto.SHA256, digest[:], raw, opts) == nil
}

// Bytes returns the canonical OpenSSH textual encoding, without trailing
// newline or comment.
func (k *RSAPublicKey) Bytes() []byte {
	return k.encoded
}

// LocalIdentity is the peer's own key pair. Only the public half ever
// leaves the process; the core performs no signing with it.
type LocalIdentity struct {
	private     *rsa.PrivateKey
	publicBytes []byte
}

// GenerateIdentity creates a fresh RSA-2048 identity for this session.
func GenerateIdentity() (*LocalIdentity, error) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate identity key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(&private.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encode identity public key: %w", err)
	}

	return &LocalIdentity{
		private:     private,
		publicBytes: bytes.TrimSpace(ssh.MarshalAuthorizedKey(sshPub)),
	}, nil
}

// PublicKeyBytes returns the OpenSSH textual encoding of the public half.
func (id *LocalIdentity) PublicKeyBytes() []byte {
	return id.publicBytes
}
