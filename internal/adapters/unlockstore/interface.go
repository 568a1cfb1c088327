package unlockstore

import (
	"context"

	"github.com/Eknes/laurel/internal/domain"
)

// UnlockStore is the durable map from tracked identity to the last-known
// unlocked achievement set.
type UnlockStore interface {
	// Get returns the stored set for the identity, or an empty set if absent.
	Get(identity domain.TrackedIdentity) domain.UnlockedSet

	// Set replaces the stored set for the identity and persists the full table.
	Set(ctx context.Context, identity domain.TrackedIdentity, unlocked domain.UnlockedSet) error

	// Clear removes the identity's entry and persists the full table.
	Clear(ctx context.Context, identity domain.TrackedIdentity) error
}
