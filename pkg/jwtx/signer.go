package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretSize is the smallest HMAC secret we accept, in bytes. HS256
// security degrades with short keys, so anything under 256 bits is a
// configuration error rather than something to silently work around.
const MinSecretSize = 32

// ErrSecretTooShort reports an HMAC secret below MinSecretSize.
var ErrSecretTooShort = errors.New("jwtx: signing secret must be at least 32 bytes")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// HS256Signer signs tokens using HMAC-SHA256 with a shared symmetric secret.
// The secret is loaded once at construction and never mutated.
type HS256Signer struct {
	secret []byte
	alg    string
}

// NewSignerHS256 creates an HS256 signer from raw secret bytes. The secret
// must be at least MinSecretSize bytes.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrSecretTooShort
	}

	return &HS256Signer{
		secret: secret,
		alg:    jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes claims and turns them into a signed JWT string. Pure function
// of the claims and the secret.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate does a quick sanity check to make sure we actually have a usable
// secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinSecretSize {
		return ErrSecretTooShort
	}
	return nil
}
