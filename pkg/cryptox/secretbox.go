package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt reports a ciphertext that failed to authenticate or decode.
// Deliberately generic so callers can't distinguish tampering from a wrong
// key.
var ErrDecrypt = errors.New("cryptox: decryption failed")

// SecretBox provides reversible authenticated encryption (AES-256-GCM) for
// secrets that must be read back in plaintext, like router credentials. The
// key is derived once at construction from configured key material and the
// box is safe for concurrent use.
//
// This is NOT for passwords that only need comparison; use HashPassword for
// those.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox derives an AES-256 key from the given key material using
// SHA-256. Key material must be non-empty; there is no development fallback,
// a missing key is a configuration error.
func NewSecretBox(keyMaterial []byte) (*SecretBox, error) {
	if len(keyMaterial) == 0 {
		return nil, errors.New("cryptox: secret store key material is empty")
	}

	key := sha256.Sum256(keyMaterial)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}

	return &SecretBox{aead: aead}, nil
}

// Seal encrypts a plaintext secret. Output is base64url of
// [nonce][ciphertext][auth tag] with a fresh random nonce per call.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Tampered or truncated input
// returns ErrDecrypt.
func (b *SecretBox) Open(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}

	nonceSize := b.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrDecrypt
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}
