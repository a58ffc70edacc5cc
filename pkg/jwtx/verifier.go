package jwtx

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
)

// Verifier validates RS256-signed launch tokens against a fixed public key.
type Verifier struct {
	key      *rsa.PublicKey
	issuer   string
	audience string
	leeway   time.Duration
}

// NewVerifier builds a Verifier. Empty issuer/audience values mean
// "don't enforce".
func NewVerifier(key *rsa.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{
		key:      key,
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
	}
}

// NewVerifierFromPEMFile loads an RSA public key in PEM form from path.
func NewVerifierFromPEMFile(path, issuer, audience string) (*Verifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwtx: read public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse public key: %w", err)
	}
	return NewVerifier(key, issuer, audience), nil
}

// Verify parses and validates raw, returning the launch claims on success.
// The signing algorithm is pinned to RS256; alg confusion attacks fail with
// ErrAlgMismatch.
func (v *Verifier) Verify(raw string) (LaunchClaims, error) {
	var claims LaunchClaims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return LaunchClaims{}, mapParseError(err)
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudience
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
