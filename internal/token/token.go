// Package token decodes portal bearer tokens on the client side.
//
// Tokens are decoded without signature verification: the checks here gate
// user experience only (deciding when to drop a stale session), never
// authorization. The portal backend remains the enforcement point for every
// request it receives.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid indicates a token that is structurally not a JWT: wrong number
// of segments, undecodable payload, or unparsable claims.
type tokenError string

func (e tokenError) Error() string { return string(e) }

// ErrInvalid is returned by Decode for structurally invalid tokens.
const ErrInvalid = tokenError("invalid token")

// Payload is the decoded, unverified claim set inside a portal token.
type Payload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Decode splits and base64url-decodes the token payload without verifying
// the signature. Any structural failure yields ErrInvalid; Decode never
// panics on malformed input.
func Decode(raw string) (*Payload, error) {
	payload := &Payload{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, payload); err != nil {
		return nil, ErrInvalid
	}
	return payload, nil
}

// ExpirationDate returns the token expiry. The second return is false when
// the token is invalid or carries no expiry claim.
func ExpirationDate(raw string) (time.Time, bool) {
	payload, err := Decode(raw)
	if err != nil || payload.ExpiresAt == nil {
		return time.Time{}, false
	}
	return payload.ExpiresAt.Time, true
}

// IsExpired reports whether the token has expired. Invalid tokens and
// tokens with no expiry claim are treated as already expired (fail-closed).
// A token whose expiry equals the current instant is expired.
func IsExpired(raw string) bool {
	return isExpiredAt(raw, time.Now())
}

func isExpiredAt(raw string, now time.Time) bool {
	exp, ok := ExpirationDate(raw)
	if !ok {
		return true
	}
	return !now.Before(exp)
}

// TimeRemaining returns the duration until the token expires, never
// negative. Invalid tokens have no time remaining.
func TimeRemaining(raw string) time.Duration {
	return timeRemainingAt(raw, time.Now())
}

func timeRemainingAt(raw string, now time.Time) time.Duration {
	exp, ok := ExpirationDate(raw)
	if !ok {
		return 0
	}
	if remaining := exp.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// ExpiresWithin reports whether the token is still valid but will expire
// within the given window.
func ExpiresWithin(raw string, window time.Duration) bool {
	remaining := TimeRemaining(raw)
	return remaining > 0 && remaining <= window
}
