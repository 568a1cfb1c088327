package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload = string

type createFunc func() (payload, error)

func withWait[T any](client *mockCacheClient[T], waits int, f createFunc) createFunc {
	return func() (payload, error) {
		for i := 0; i < waits; i++ {
			client.wait()
		}
		return f()
	}
}

func makePayload(variant int) (payload, error) {
	return fmt.Sprintf("details%d", variant), nil
}

func successCreate(variant int) createFunc {
	return func() (payload, error) {
		return makePayload(variant)
	}
}

func failingCreate(variant int) createFunc {
	return func() (payload, error) {
		return "", fmt.Errorf("error%d", variant)
	}
}

func unreachableCreate(t *testing.T) createFunc {
	return func() (payload, error) {
		t.Fatal("Unreachable code executed")
		return "", nil
	}
}

func TestMockedCacheFinishes(t *testing.T) {
	for clientCount := 0; clientCount < 10; clientCount++ {
		server, clients := NewMockCacheServer[payload](clientCount, 100)
		completedWg := sync.WaitGroup{}
		completedWg.Add(clientCount)
		for i := 0; i < clientCount; i++ {
			i := i
			go func() {
				clients[i].waitUntilDone()
				completedWg.Done()
			}()
		}
		server.processTicks()
		completedWg.Wait()
	}
}

func TestGetOrCreateSingle(t *testing.T) {
	server, clients := NewMockCacheServer[payload](1, 10)

	go func() {
		client := clients[0]
		assert.Equal(t, 0, client.server.currentTick)

		data, err := GetOrCreate(context.Background(), client, "group1:440", successCreate(1))
		assert.Nil(t, err)
		assert.Equal(t, "details1", string(data))
		assert.Equal(t, 0, client.server.currentTick)

		client.wait()

		assert.Equal(t, 1, client.server.currentTick)

		client.waitUntilDone()
	}()

	server.processTicks()
}

func TestGetOrCreateMultiple(t *testing.T) {
	server, clients := NewMockCacheServer[payload](2, 10)

	go func() {
		client := clients[0]
		data, err := GetOrCreate(context.Background(), client, "group1:440", successCreate(1))
		assert.Nil(t, err)
		assert.Equal(t, "details1", string(data))
		assert.Equal(t, 0, client.server.currentTick)

		data, err = GetOrCreate(context.Background(), client, "group1:730", withWait(client, 2, successCreate(2)))
		assert.Nil(t, err)
		assert.Equal(t, "details2", string(data))
		assert.Equal(t, 2, client.server.currentTick)

		client.waitUntilDone()
	}()

	go func() {
		client := clients[1]
		client.wait() // Wait for the first client to populate the cache
		data, err := GetOrCreate(context.Background(), client, "group1:440", unreachableCreate(t))
		assert.Nil(t, err)
		assert.Equal(t, "details1", string(data))
		assert.Equal(t, 1, client.server.currentTick)

		data, err = GetOrCreate(context.Background(), client, "group1:730", unreachableCreate(t))
		assert.Nil(t, err)
		assert.Equal(t, "details2", string(data))
		// The first client inserts this entry during the second tick. Depending
		// on which client's second tick runs first we see it in tick 2 or 3.
		assert.True(t, client.server.currentTick == 2 || client.server.currentTick == 3)

		client.waitUntilDone()
	}()

	server.processTicks()
}

func TestGetOrCreateErrorRetries(t *testing.T) {
	server, clients := NewMockCacheServer[payload](2, 10)

	go func() {
		client := clients[0]
		_, err := GetOrCreate(context.Background(), client, "group1:440", withWait(client, 2, failingCreate(1)))
		assert.NotNil(t, err)
		assert.Equal(t, 2, client.server.currentTick)

		client.waitUntilDone()
	}()

	go func() {
		client := clients[1]
		client.wait()

		// The failed create leaves no entry behind, so this call waits for the
		// first client to give up, then claims the key and creates the value.
		data, err := GetOrCreate(context.Background(), client, "group1:440", withWait(client, 2, successCreate(1)))
		assert.Nil(t, err)
		assert.Equal(t, "details1", string(data))
		assert.True(t, client.server.currentTick == 4 || client.server.currentTick == 5)

		client.waitUntilDone()
	}()

	server.processTicks()
}

func TestGetOrCreateCleansUpOnError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		cache Cache[payload]
	}{
		{
			name:  "BasicCache",
			cache: NewBasicCache[payload](),
		},
		{
			name:  "TTLCache",
			cache: NewTTLCache[payload](1 * time.Minute),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := GetOrCreate(context.Background(), c.cache, "group1:440", failingCreate(10))
			require.Error(t, err)

			// The cache should be empty and allow us to create a new entry
			data, err := GetOrCreate(context.Background(), c.cache, "group1:440", successCreate(1))
			require.Nil(t, err)
			require.Equal(t, "details1", string(data))
		})
	}
}

func TestGetOrCreateRealCache(t *testing.T) {
	t.Run("requests are de-duplicated in highly concurrent environment", func(t *testing.T) {
		ctx := context.Background()
		cache := NewTTLCache[payload](1 * time.Minute)

		for testIndex := 0; testIndex < 100; testIndex++ {
			t.Run(fmt.Sprintf("attempt #%d", testIndex), func(t *testing.T) {
				t.Parallel()

				called := false
				monoStableCreate := func() (payload, error) {
					require.False(t, called, "Create should only be called once")
					called = true
					return makePayload(1)
				}

				for callIndex := 0; callIndex < 10; callIndex++ {
					go func() {
						data, err := GetOrCreate(ctx, cache, fmt.Sprintf("group%d:440", testIndex), monoStableCreate)
						require.Nil(t, err)
						require.Equal(t, "details1", string(data))
					}()
				}
			})
		}
	})
}
