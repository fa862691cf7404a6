package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BackendClaims is the subset of the storefront backend JWT the gateway reads.
type BackendClaims struct {
	jwt.RegisteredClaims
}

// BearerInfo describes what could be read from a backend bearer token.
// A zero value means the token is opaque.
type BearerInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Opaque reports whether nothing could be read from the token.
func (b BearerInfo) Opaque() bool {
	return b.Subject == "" && b.ExpiresAt.IsZero()
}

// Expired reports whether the token carries an expiry at or before now.
func (b BearerInfo) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt)
}

// Lifetime caps ttl at the remaining token lifetime.
func (b BearerInfo) Lifetime(now time.Time, ttl time.Duration) time.Duration {
	if b.ExpiresAt.IsZero() {
		return ttl
	}
	remaining := b.ExpiresAt.Sub(now)
	if remaining < ttl {
		return remaining
	}
	return ttl
}
