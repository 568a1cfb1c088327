package blacklist

import "context"

// Guard is a one-way latch of game ids whose achievement data turned out
// to be permanently unretrievable. Entries never expire.
type Guard interface {
	IsBlacklisted(appID uint32) bool

	// Add inserts the app id and flushes the blacklist to durable storage.
	// Idempotent.
	Add(ctx context.Context, appID uint32) error
}
