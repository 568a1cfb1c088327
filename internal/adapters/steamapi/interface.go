package steamapi

import (
	"context"

	"github.com/Eknes/laurel/internal/domain"
)

type AchievementProvider interface {
	// Returns the full achievement list for the player in the given language,
	// unlocked and locked entries alike.
	//
	// Raises domain.ErrPermissionDenied if the player's profile does not expose
	// achievement data. The call must not be retried.
	//
	// Raises domain.ErrTemporarilyUnavailable on errors believed to be
	// intermittent. The call may be retried later.
	GetPlayerAchievements(ctx context.Context, steamID string, appID uint32, language string) ([]domain.PlayerAchievement, error)

	// Returns the achievement schema for the game in the given language,
	// keyed by achievement api name. Global unlock percents are not filled in.
	//
	// Raises domain.ErrNoSchema if the game has no achievement schema or the
	// app id is invalid.
	//
	// Raises domain.ErrTemporarilyUnavailable on errors believed to be
	// intermittent.
	GetSchemaAchievements(ctx context.Context, appID uint32, language string) (map[string]domain.AchievementDetail, error)

	// Returns the global unlock percent per achievement api name.
	GetGlobalPercentages(ctx context.Context, appID uint32) (map[string]float64, error)
}
