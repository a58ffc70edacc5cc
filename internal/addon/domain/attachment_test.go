package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAttachmentKeyString(t *testing.T) {
	t.Parallel()

	t.Run("identical tuples produce identical keys", func(t *testing.T) {
		a := AttachmentKey{CourseID: "c1", ItemID: "i1", AttachmentID: "a1"}
		b := AttachmentKey{CourseID: "c1", ItemID: "i1", AttachmentID: "a1"}
		require.Equal(t, a.String(), b.String())
	})

	t.Run("separator characters in ids cannot collide", func(t *testing.T) {
		a := AttachmentKey{CourseID: "c/1", ItemID: "i", AttachmentID: "a"}
		b := AttachmentKey{CourseID: "c", ItemID: "1/i", AttachmentID: "a"}
		require.NotEqual(t, a.String(), b.String())
	})

	t.Run("permuted components produce distinct keys", func(t *testing.T) {
		a := AttachmentKey{CourseID: "x", ItemID: "y", AttachmentID: "z"}
		b := AttachmentKey{CourseID: "y", ItemID: "x", AttachmentID: "z"}
		require.NotEqual(t, a.String(), b.String())
	})
}

func TestCredentialFresh(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("fresh with margin to spare", func(t *testing.T) {
		c := Credential{ExpiresAt: now.Add(10 * time.Minute)}
		require.True(t, c.Fresh(now, time.Minute))
	})

	t.Run("stale inside the margin", func(t *testing.T) {
		c := Credential{ExpiresAt: now.Add(30 * time.Second)}
		require.False(t, c.Fresh(now, time.Minute))
	})

	t.Run("stale past expiry", func(t *testing.T) {
		c := Credential{ExpiresAt: now.Add(-time.Minute)}
		require.False(t, c.Fresh(now, 0))
	})
}

func TestCredentialHasScopes(t *testing.T) {
	t.Parallel()

	c := Credential{Scopes: []string{"scope.a", "scope.b"}}

	require.True(t, c.HasScopes([]string{"scope.a"}))
	require.True(t, c.HasScopes([]string{"scope.a", "scope.b"}))
	require.True(t, c.HasScopes(nil))
	require.False(t, c.HasScopes([]string{"scope.c"}))
	require.False(t, c.HasScopes([]string{"scope.a", "scope.c"}))
}
