package jwtx

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signLaunchToken(t *testing.T, key *rsa.PrivateKey, claims LaunchClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func baseClaims() LaunchClaims {
	return LaunchClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "host-platform",
			Audience:  jwt.ClaimStrings{"edukit"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role:     "teacher",
		CourseID: "course-1",
		ItemID:   "item-1",
	}
}

func TestVerifier(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	v := NewVerifier(&key.PublicKey, "host-platform", "edukit")

	t.Run("accepts a valid token", func(t *testing.T) {
		claims, err := v.Verify(signLaunchToken(t, key, baseClaims()))
		require.NoError(t, err)
		require.Equal(t, "teacher", claims.Role)
		require.Equal(t, "course-1", claims.CourseID)
		require.Equal(t, "item-1", claims.ItemID)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := newTestKey(t)
		_, err := v.Verify(signLaunchToken(t, other, baseClaims()))
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		claims := baseClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(signLaunchToken(t, key, claims))
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("rejects a token without expiry", func(t *testing.T) {
		claims := baseClaims()
		claims.ExpiresAt = nil
		_, err := v.Verify(signLaunchToken(t, key, claims))
		require.Error(t, err)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		claims := baseClaims()
		claims.Issuer = "someone-else"
		_, err := v.Verify(signLaunchToken(t, key, claims))
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("rejects wrong audience", func(t *testing.T) {
		claims := baseClaims()
		claims.Audience = jwt.ClaimStrings{"other-addon"}
		_, err := v.Verify(signLaunchToken(t, key, claims))
		require.ErrorIs(t, err, ErrAudience)
	})

	t.Run("rejects HS256 tokens", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims()).
			SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		_, err = v.Verify(raw)
		require.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("unenforced issuer and audience", func(t *testing.T) {
		loose := NewVerifier(&key.PublicKey, "", "")
		claims := baseClaims()
		claims.Issuer = "anything"
		claims.Audience = nil

		got, err := loose.Verify(signLaunchToken(t, key, claims))
		require.NoError(t, err)
		require.Equal(t, "teacher", got.Role)
	})
}
