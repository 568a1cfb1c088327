package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Eknes/laurel/internal/adapters/unlockhistory"
	"github.com/Eknes/laurel/internal/adapters/unlockstore"
	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/logging"
)

type ReconciliationResult struct {
	// Api names unlocked since the last successful reconciliation, in
	// lexicographic order.
	NewlyUnlocked []string
	// Size of the identity's current unlocked set.
	UnlockedCount int
}

// ReconcileAchievements runs one fetch -> diff -> persist cycle for the
// identity.
//
// A fetch failure propagates as an error and leaves the stored baseline
// untouched. A reconciliation either fully commits a new baseline or fully
// no-ops.
type ReconcileAchievements func(ctx context.Context, identity domain.TrackedIdentity) (ReconciliationResult, error)

// ClearTrackedGame removes the stored baseline for the identity. The next
// reconciliation starts from an empty set.
type ClearTrackedGame func(ctx context.Context, identity domain.TrackedIdentity) error

func BuildReconcileAchievements(
	fetchUnlockedAchievements FetchUnlockedAchievements,
	store unlockstore.UnlockStore,
	history unlockhistory.UnlockHistory,
	nowFunc func() time.Time,
) ReconcileAchievements {
	return func(ctx context.Context, identity domain.TrackedIdentity) (ReconciliationResult, error) {
		logger := logging.FromContext(ctx)

		current, err := fetchUnlockedAchievements(ctx, identity)
		if err != nil {
			// The baseline must not be touched when the current set is unknown
			return ReconciliationResult{}, fmt.Errorf("could not fetch unlocked achievements: %w", err)
		}

		stored := store.Get(identity)
		newlyUnlocked := current.Subtract(stored).Sorted()

		if err := store.Set(ctx, identity, current); err != nil {
			// NOTE: UnlockStore implementations handle their own error reporting.
			// The in-memory baseline is updated; only the durable copy is stale.
			logger.ErrorContext(ctx, "Failed to persist unlock state", "identity", identity.Key(), "error", err.Error())
		}

		if history != nil && len(newlyUnlocked) > 0 {
			// Ignore cancellations from the request context and try to record the
			// unlocks anyway. Take a maximum of 1 second to not block the request
			// for too long.
			historyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
			defer cancel()
			if err := history.RecordUnlocks(historyCtx, identity, newlyUnlocked, nowFunc()); err != nil {
				// NOTE: UnlockHistory implementations handle their own error reporting
				logger.ErrorContext(ctx, "Failed to record unlock history", "identity", identity.Key(), "error", err.Error())
			}
		}

		return ReconciliationResult{
			NewlyUnlocked: newlyUnlocked,
			UnlockedCount: len(current),
		}, nil
	}
}

func BuildClearTrackedGame(store unlockstore.UnlockStore) ClearTrackedGame {
	return func(ctx context.Context, identity domain.TrackedIdentity) error {
		if err := store.Clear(ctx, identity); err != nil {
			// NOTE: UnlockStore implementations handle their own error reporting
			return fmt.Errorf("could not clear tracked game: %w", err)
		}
		return nil
	}
}
