package domain

import "time"

// GenericSerial is the sentinel serial for the shared app bootstrap
// credential. A device token row carrying it is not a specific device; it
// authenticates as claim type=generic instead of serial=GENERIC_APP.
const GenericSerial = "GENERIC_APP"

// Kind discriminates what subject an opaque token row belongs to. The set is
// closed; anything outside it is a bug, not a new feature.
type Kind string

const (
	KindDevice   Kind = "device"
	KindProvider Kind = "provider"
	KindUser     Kind = "user"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDevice, KindProvider, KindUser:
		return true
	}
	return false
}

// TokenRecord is a persisted opaque-token row. Exactly one of Serial,
// ProviderID, UserID is populated, matching Kind. At most one row exists per
// (Kind, identity) pair; upserts replace, never append.
type TokenRecord struct {
	ID         int64
	Kind       Kind
	Serial     string // device kind only
	ProviderID int64  // provider kind only
	UserID     int64  // user kind only
	Token      string
	ExpiresAt  *time.Time // nil means non-expiring
	CreatedAt  time.Time
}

// Expired reports whether the record has an expiry in the past.
func (r TokenRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// TokenGrant is what issuance callers get back: the token value plus its
// optional expiry.
type TokenGrant struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
