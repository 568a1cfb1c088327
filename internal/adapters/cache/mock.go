package cache

import (
	"runtime"
	"sync"
)

type mockEntry[T any] struct {
	data       T
	valid      bool
	insertedAt int
}

// mockCacheServer drives a tick-based schedule for concurrency tests. Each
// client advances one tick per wait() call, and the server only moves to the
// next tick once every client has checked in. This makes goroutine
// interleavings around claim/set/delete deterministic.
type mockCacheServer[T any] struct {
	entries           map[string]mockEntry[T]
	entriesLock       sync.Mutex
	tickLock          sync.Mutex
	currentTick       int
	maxTicks          int
	numGoroutines     int
	completedThisTick int
}

type mockCacheClient[T any] struct {
	server      *mockCacheServer[T]
	desiredTick int
}

func NewMockCacheServer[T any](numGoroutines int, maxTicks int) (*mockCacheServer[T], []*mockCacheClient[T]) {
	server := &mockCacheServer[T]{
		entries:       make(map[string]mockEntry[T]),
		maxTicks:      maxTicks,
		numGoroutines: numGoroutines,
	}

	clients := make([]*mockCacheClient[T], numGoroutines)
	for i := range numGoroutines {
		clients[i] = &mockCacheClient[T]{server: server}
	}

	return server, clients
}

func (c *mockCacheClient[T]) getOrClaim(key string) hitResult[T] {
	c.server.entriesLock.Lock()
	defer c.server.entriesLock.Unlock()

	if entry, ok := c.server.entries[key]; ok {
		return hitResult[T]{
			data:    entry.data,
			valid:   entry.valid,
			claimed: false,
		}
	}

	c.server.entries[key] = mockEntry[T]{
		valid:      false,
		insertedAt: c.server.currentTick,
	}
	return hitResult[T]{
		valid:   false,
		claimed: true,
	}
}

func (c *mockCacheClient[T]) set(key string, data T) {
	c.server.entriesLock.Lock()
	defer c.server.entriesLock.Unlock()

	c.server.entries[key] = mockEntry[T]{
		data:       data,
		valid:      true,
		insertedAt: c.server.currentTick,
	}
}

func (c *mockCacheClient[T]) delete(key string) {
	c.server.entriesLock.Lock()
	defer c.server.entriesLock.Unlock()

	delete(c.server.entries, key)
}

func (c *mockCacheClient[T]) wait() {
	if c.server.isDone() {
		panic("wait() called on a client that is already done")
	}

	c.server.tickLock.Lock()
	c.server.completedThisTick++
	c.server.tickLock.Unlock()

	c.desiredTick++

	for c.server.currentTick < c.desiredTick {
		runtime.Gosched()
	}
}

func (c *mockCacheClient[T]) waitUntilDone() {
	for !c.server.isDone() {
		c.wait()
	}
}

func (s *mockCacheServer[T]) isDone() bool {
	return s.currentTick >= s.maxTicks
}

func (s *mockCacheServer[T]) processTicks() {
	for !s.isDone() {
		if s.completedThisTick != s.numGoroutines {
			runtime.Gosched()
			continue
		}

		s.tickLock.Lock()
		s.completedThisTick = 0
		s.currentTick++
		s.tickLock.Unlock()
	}
}
