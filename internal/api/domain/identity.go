package domain

// Scheme tags which authentication path produced an Identity.
type Scheme string

const (
	// SchemeSigned means the token verified cryptographically, no store
	// lookup involved.
	SchemeSigned Scheme = "signed"

	// SchemeOpaque means the raw token matched a stored token row.
	SchemeOpaque Scheme = "opaque"
)

// Claim type values carried by device-category tokens.
const (
	TypeBootstrap = "bootstrap"
	TypeGeneric   = "generic"
)

// Role values used in claims and policies.
const (
	RoleAdmin    = "Admin"
	RoleUser     = "User"
	RoleProvider = "Provider"
)

// ClaimSet is the closed set of claims an authenticated identity can carry.
// Zero values mean "claim absent".
type ClaimSet struct {
	UserID     int64
	Name       string
	Role       string
	Serial     string
	ProviderID int64
	DeviceID   string
	Type       string // TypeBootstrap or TypeGeneric
}

// IsZero reports whether no claim at all is populated. An identity with a
// zero claim set is useless and must not authenticate.
func (c ClaimSet) IsZero() bool {
	return c == ClaimSet{}
}

// Identity is the request-scoped result of authentication: a claim set plus
// the scheme that produced it. Never persisted.
type Identity struct {
	Scheme Scheme
	Claims ClaimSet
}
