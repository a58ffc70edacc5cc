package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("tokens are unique", func(t *testing.T) {
		a, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		b, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("tokens are url safe", func(t *testing.T) {
		token, err := GenerateToken(TokenSize128)
		require.NoError(t, err)
		require.NotContains(t, token, "+")
		require.NotContains(t, token, "/")
		require.NotContains(t, token, "=")
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	})

	t.Run("distinct inputs produce distinct fingerprints", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	})

	t.Run("fingerprint does not reveal the token", func(t *testing.T) {
		token := MustGenerateToken(TokenSize256)
		require.NotContains(t, FingerprintToken(token), token)
	})
}
