package domain

import "time"

// Provider is an ISP whose routers the fleet manages.
type Provider struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt time.Time
}

// RouterModel is a router hardware model offered by a provider. The
// identifier is the stable string devices report ("AX1000" etc).
type RouterModel struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	ProviderID int64  `json:"providerId"`
}

// RouterCredential is a factory login for a router model. The password is
// stored encrypted (reversible, the provisioning app needs the plaintext)
// and only decrypted at the service boundary.
type RouterCredential struct {
	ID                int64
	RouterModelID     int64
	Username          string
	PasswordEncrypted string
	SortOrder         int // smaller comes first
}

// CredentialItem is a decrypted credential as returned to callers.
type CredentialItem struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
