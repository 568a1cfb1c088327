package domain_test

import (
	"testing"

	"github.com/Eknes/laurel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackedIdentityKey(t *testing.T) {
	t.Parallel()

	identity := domain.TrackedIdentity{
		GroupID: "group-1",
		SteamID: "76561198000000000",
		AppID:   440,
	}

	assert.Equal(t, "group-1:76561198000000000:440", identity.Key())
	assert.Equal(t, identity.Key(), identity.String())
}

func TestUnlockedSet(t *testing.T) {
	t.Parallel()

	t.Run("subtract", func(t *testing.T) {
		t.Parallel()

		current := domain.NewUnlockedSet("a", "b", "c")
		stored := domain.NewUnlockedSet("a", "b")

		diff := current.Subtract(stored)
		require.Len(t, diff, 1)
		assert.True(t, diff.Contains("c"))

		// Subtracting in the other direction yields nothing new
		assert.Empty(t, stored.Subtract(current))
	})

	t.Run("subtract from empty", func(t *testing.T) {
		t.Parallel()

		current := domain.NewUnlockedSet("a", "b")
		diff := current.Subtract(domain.NewUnlockedSet())
		assert.Equal(t, []string{"a", "b"}, diff.Sorted())
	})

	t.Run("sorted is stable", func(t *testing.T) {
		t.Parallel()

		set := domain.NewUnlockedSet("z", "a", "m")
		assert.Equal(t, []string{"a", "m", "z"}, set.Sorted())
	})

	t.Run("contains", func(t *testing.T) {
		t.Parallel()

		set := domain.NewUnlockedSet("a")
		assert.True(t, set.Contains("a"))
		assert.False(t, set.Contains("b"))
	})
}
