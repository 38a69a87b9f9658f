package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the token flows we support.
// These provide sensible defaults but can be overridden per-caller.
const (
	// DefaultUserTokenTTL is the lifetime of tokens issued on user
	// register/login.
	DefaultUserTokenTTL = 4 * time.Hour

	// DefaultBootstrapTokenTTL is the lifetime of the provisioning token a
	// device gets before it has a serial number assigned.
	DefaultBootstrapTokenTTL = 24 * time.Hour

	// DefaultLeeway is the clock-skew allowance applied when validating
	// exp/nbf. Because time sync is never perfect.
	DefaultLeeway = 2 * time.Minute
)

// Claims are the access-token claims used across the service. One token
// represents exactly one subject: a human user, a provisioning or registered
// device, or a provider integration. Only the fields relevant to the subject
// are populated.
type Claims struct {
	jwt.RegisteredClaims

	// Name is the display name for a human user.
	Name string `json:"name,omitempty"`

	// Role is the subject's role ("Admin", "User", "Provider").
	Role string `json:"role,omitempty"`

	// Serial identifies a registered device by its serial number.
	Serial string `json:"serial,omitempty"`

	// ProviderID identifies a provider integration.
	ProviderID int64 `json:"providerId,omitempty"`

	// DeviceID is the self-reported device identifier carried by
	// pre-registration bootstrap tokens.
	DeviceID string `json:"deviceId,omitempty"`

	// Type marks special token categories: "bootstrap" for provisioning
	// tokens, "generic" for the shared app credential.
	Type string `json:"type,omitempty"`
}

// NewClaims builds minimally-correct claims stamped at the given time.
// Callers pass time.Now().UTC() outside of tests.
func NewClaims(issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiryWithLeeway ensures the token hasn't expired (exp) and isn't
// used before it is valid (nbf), with a grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

// TimeRemaining reports how long until the token expires. Zero or negative
// means the token is already expired. Returns 0 when exp is absent.
func (c *Claims) TimeRemaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
