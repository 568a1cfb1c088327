package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache(t *testing.T) {
	t.Run("Set and get", func(t *testing.T) {
		c := NewTTLCache[string](1000 * time.Second)

		c.set("test", "data")

		result := c.getOrClaim("test")
		assert.False(t, result.claimed, "Expected entry to exist")
		assert.True(t, result.valid)
		assert.Equal(t, "data", result.data)
	})

	t.Run("getOrClaim claims when missing", func(t *testing.T) {
		c := NewTTLCache[string](1000 * time.Second)

		result := c.getOrClaim("test")
		assert.True(t, result.claimed, "Expected entry to not exist and get claimed")

		result = c.getOrClaim("test")
		assert.False(t, result.claimed, "Expected entry to exist and not get claimed")
		assert.False(t, result.valid, "Expected entry to be invalid")
	})

	t.Run("delete", func(t *testing.T) {
		c := NewTTLCache[string](1000 * time.Second)
		c.set("test", "data")

		c.delete("test")

		result := c.getOrClaim("test")
		assert.True(t, result.claimed, "Expected to not find a value")
	})

	t.Run("delete missing entry", func(t *testing.T) {
		c := NewTTLCache[string](1000 * time.Second)

		c.delete("test")

		result := c.getOrClaim("test")
		assert.True(t, result.claimed, "Expected to not find a value")
	})

	t.Run("wait", func(t *testing.T) {
		c := NewTTLCache[string](1000 * time.Second)
		c.wait()
	})
}

func TestProcessLifetimeCache(t *testing.T) {
	c := NewProcessLifetimeCache[int]()

	result := c.getOrClaim("key")
	assert.True(t, result.claimed)

	c.set("key", 7)

	result = c.getOrClaim("key")
	assert.False(t, result.claimed)
	assert.True(t, result.valid)
	assert.Equal(t, 7, result.data)
}
