package domain

import "time"

// RouterProfile is a user-saved router login: the address and credentials a
// user keeps for one of their own routers. The password is stored hashed;
// profiles are checked, never read back in plaintext. Serial numbers are
// unique per owner, not globally.
type RouterProfile struct {
	ID           int64
	UserID       int64
	IP           string
	Username     string
	PasswordHash string
	Serial       string
	Model        string
	CreatedAt    time.Time
}
