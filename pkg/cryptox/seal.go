package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealKeySize is the required key length for a Sealer, in bytes.
const SealKeySize = chacha20poly1305.KeySize

var (
	// ErrSealKeySize reports a key of the wrong length.
	ErrSealKeySize = errors.New("cryptox: seal key must be 32 bytes")
	// ErrSealOpen reports ciphertext that failed authentication.
	ErrSealOpen = errors.New("cryptox: cannot open sealed value")
)

// Sealer encrypts small secrets (OAuth tokens) for storage at rest using
// XChaCha20-Poly1305. Output is base64url(nonce || ciphertext).
type Sealer struct {
	key []byte
}

// NewSealer returns a Sealer for the given 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != SealKeySize {
		return nil, ErrSealKeySize
	}
	k := make([]byte, SealKeySize)
	copy(k, key)
	return &Sealer{key: k}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("cryptox: seal: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cryptox: seal nonce: %w", err)
	}

	out := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealOpen
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("cryptox: open: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", ErrSealOpen
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrSealOpen
	}
	return string(plaintext), nil
}
