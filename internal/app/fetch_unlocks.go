package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eknes/laurel/internal/adapters/blacklist"
	"github.com/Eknes/laurel/internal/adapters/steamapi"
	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/logging"
	"github.com/Eknes/laurel/internal/reporting"
)

const fetchAttemptTimeout = 15 * time.Second

// FetchUnlockedAchievements returns the identity's current unlocked set.
//
// Raises domain.ErrPermissionDenied if the player's profile is private.
//
// Raises domain.ErrGameUnavailable if the game is blacklisted, or if every
// language and attempt was exhausted without an acceptable response. In the
// latter case the game is blacklisted before returning.
type FetchUnlockedAchievements func(ctx context.Context, identity domain.TrackedIdentity) (domain.UnlockedSet, error)

type languageStrategy struct {
	language    string
	maxAttempts int
}

// languageFallbackChain returns the ordered language preference list,
// de-duplicated with the given languages first.
func languageFallbackChain(preferred ...string) []languageStrategy {
	languages := append(preferred, "english", "en")

	seen := make(map[string]struct{}, len(languages))
	chain := make([]languageStrategy, 0, len(languages))
	for _, language := range languages {
		if language == "" {
			continue
		}
		if _, ok := seen[language]; ok {
			continue
		}
		seen[language] = struct{}{}
		chain = append(chain, languageStrategy{language: language, maxAttempts: 3})
	}

	return chain
}

// A localized achievement list is accepted only if at least one entry
// carries a non-empty description. Incomplete localization payloads come
// back with a 200 status and empty descriptions.
func hasAnyDescription(achievements []domain.PlayerAchievement) bool {
	for _, achievement := range achievements {
		if achievement.Description != "" {
			return true
		}
	}
	return false
}

func unlockedSetFromAchievements(achievements []domain.PlayerAchievement) domain.UnlockedSet {
	unlocked := domain.NewUnlockedSet()
	for _, achievement := range achievements {
		if achievement.Achieved {
			unlocked[achievement.APIName] = struct{}{}
		}
	}
	return unlocked
}

func BuildFetchUnlockedAchievements(
	provider steamapi.AchievementProvider,
	guard blacklist.Guard,
	primaryLocale string,
) FetchUnlockedAchievements {
	return func(ctx context.Context, identity domain.TrackedIdentity) (domain.UnlockedSet, error) {
		logger := logging.FromContext(ctx)

		if guard.IsBlacklisted(identity.AppID) {
			return nil, fmt.Errorf("%w: app %d is blacklisted", domain.ErrGameUnavailable, identity.AppID)
		}

		for _, strategy := range languageFallbackChain(primaryLocale) {
			for attempt := 0; attempt < strategy.maxAttempts; attempt++ {
				attemptCtx, cancel := context.WithTimeout(ctx, fetchAttemptTimeout)
				achievements, err := provider.GetPlayerAchievements(attemptCtx, identity.SteamID, identity.AppID, strategy.language)
				cancel()

				if errors.Is(err, domain.ErrPermissionDenied) {
					// Profile privacy. Terminal for this call, no retry, no blacklist.
					return nil, err
				}
				if err != nil {
					logger.WarnContext(ctx, "Failed to fetch player achievements",
						"identity", identity.Key(),
						"language", strategy.language,
						"attempt", attempt+1,
						"error", err.Error(),
					)
					continue
				}

				if !hasAnyDescription(achievements) {
					logger.InfoContext(ctx, "Rejected achievement response without descriptions",
						"identity", identity.Key(),
						"language", strategy.language,
						"attempt", attempt+1,
					)
					continue
				}

				return unlockedSetFromAchievements(achievements), nil
			}
		}

		logger.InfoContext(ctx, "Blacklisting app after exhausting all languages and attempts", "appID", identity.AppID)
		if err := guard.Add(ctx, identity.AppID); err != nil {
			// NOTE: Guard implementations handle their own error reporting.
			// The in-memory blacklist entry is still in place.
			logger.ErrorContext(ctx, "Failed to persist blacklist entry", "appID", identity.AppID, "error", err.Error())
		}

		err := fmt.Errorf("%w: exhausted all languages and attempts for app %d", domain.ErrGameUnavailable, identity.AppID)
		reporting.Report(ctx, err, map[string]string{
			"identity": identity.Key(),
		})
		return nil, err
	}
}
