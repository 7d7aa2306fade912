// Package token contains domain-level types for authority-issued access
// tokens. It is pure and free of transport/adapter concerns.
package token

import (
	"errors"
	"fmt"
	"time"
)

// AccessToken is a signed, time-bounded credential issued by the remote
// authority on a successful join. It is immutable after construction; a
// refresh produces a new token rather than mutating the old one.
type AccessToken struct {
	// Username is the principal the authority granted access to.
	Username string

	// PublicKey is the textual encoding of the peer's own public key,
	// echoed back by the authority and bound into the signed payload so
	// the token cannot be replayed for a different peer.
	PublicKey []byte

	// ExpirationTime is the authority-issued expiry as received on the
	// wire: an ISO-8601 timestamp with no timezone, interpreted as UTC.
	ExpirationTime string

	// Signature is the authority's signature over SignedPayload, in the
	// textual (base64) form it arrived in.
	Signature []byte
}

// SignedPayload returns the canonical byte serialization the authority
// signed: the username, peer public key, and expiration time joined with
// single spaces.
func (t AccessToken) SignedPayload() []byte {
	return []byte(t.Username + " " + string(t.PublicKey) + " " + t.ExpirationTime)
}

// ErrTimezoneNotAllowed indicates an expiration timestamp carried timezone
// information. The authority always emits naive UTC timestamps; a
// timezone-bearing timestamp is a protocol violation and the token is
// rejected rather than silently reinterpreted.
var ErrTimezoneNotAllowed = errors.New("expiration time must not carry timezone information")

// naiveLayouts are the accepted timestamp shapes. Go's parser also accepts
// a fractional seconds field with these layouts, so "2021-06-01T12:00:00.5"
// parses without a dedicated layout.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// zonedLayouts exist only to distinguish "carries a timezone" from
// "unparseable" when the naive layouts reject a value.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
}

// ParseExpiration parses an authority-issued expiration timestamp. Naive
// timestamps are interpreted as UTC. Timezone-bearing timestamps return
// ErrTimezoneNotAllowed; anything else unparseable returns a generic error.
func ParseExpiration(value string) (time.Time, error) {
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	for _, layout := range zonedLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return time.Time{}, fmt.Errorf("parse expiration time %q: %w", value, ErrTimezoneNotAllowed)
		}
	}
	return time.Time{}, fmt.Errorf("parse expiration time %q: unrecognized format", value)
}

// FormatExpiration renders a time in the naive UTC shape the authority
// emits. Used by test fixtures and anywhere a token has to be constructed
// locally.
func FormatExpiration(ts time.Time) string {
	return ts.UTC().Format("2006-01-02T15:04:05")
}
