package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("generates unique ids", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 1000 {
			id := New().String()
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("ids are monotonic within a tick", func(t *testing.T) {
		a := New()
		b := New()
		require.Less(t, a.String(), b.String())
	})

	t.Run("embeds creation time", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		id := New()
		after := time.Now().Add(time.Second)

		require.True(t, id.Time().After(before))
		require.True(t, id.Time().Before(after))
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("round trips", func(t *testing.T) {
		id := New()
		parsed, err := Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := Parse("not-a-ulid")
		require.Error(t, err)
	})

	t.Run("zero value", func(t *testing.T) {
		var id ID
		require.True(t, id.IsZero())
		require.False(t, New().IsZero())
	})
}
