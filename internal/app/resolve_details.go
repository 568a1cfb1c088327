package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eknes/laurel/internal/adapters/blacklist"
	"github.com/Eknes/laurel/internal/adapters/cache"
	"github.com/Eknes/laurel/internal/adapters/steamapi"
	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/logging"
)

// ResolveAchievementDetails returns the full achievement metadata mapping
// for the game, keyed by api name. The mapping is cached per (group, app)
// for the remainder of the process lifetime.
//
// A blacklisted game resolves to an empty mapping without any requests.
//
// Raises domain.ErrMissingCredentials if the schema endpoint rejected the
// game and no steam id is available for the degraded per-player lookup.
type ResolveAchievementDetails func(ctx context.Context, groupID string, appID uint32, languageHint string, steamID string) (map[string]domain.AchievementDetail, error)

func detailsCacheKey(groupID string, appID uint32) string {
	return fmt.Sprintf("%s:%d", groupID, appID)
}

func detailsHaveAnyDescription(details map[string]domain.AchievementDetail) bool {
	for _, detail := range details {
		if detail.Description != "" {
			return true
		}
	}
	return false
}

func BuildResolveAchievementDetails(
	detailsCache cache.Cache[map[string]domain.AchievementDetail],
	provider steamapi.AchievementProvider,
	guard blacklist.Guard,
	primaryLocale string,
) ResolveAchievementDetails {
	resolveWithoutCache := buildResolveDetailsWithoutCache(provider, primaryLocale)

	return func(ctx context.Context, groupID string, appID uint32, languageHint string, steamID string) (map[string]domain.AchievementDetail, error) {
		if guard.IsBlacklisted(appID) {
			return map[string]domain.AchievementDetail{}, nil
		}

		details, err := cache.GetOrCreate(ctx, detailsCache, detailsCacheKey(groupID, appID), func() (map[string]domain.AchievementDetail, error) {
			return resolveWithoutCache(ctx, appID, languageHint, steamID)
		})
		if err != nil {
			// NOTE: GetOrCreate only returns an error if create() fails.
			// resolveWithoutCache handles its own error reporting
			return nil, fmt.Errorf("failed to cache.GetOrCreate achievement details: %w", err)
		}

		return details, nil
	}
}

func buildResolveDetailsWithoutCache(
	provider steamapi.AchievementProvider,
	primaryLocale string,
) func(ctx context.Context, appID uint32, languageHint string, steamID string) (map[string]domain.AchievementDetail, error) {
	return func(ctx context.Context, appID uint32, languageHint string, steamID string) (map[string]domain.AchievementDetail, error) {
		logger := logging.FromContext(ctx)

		var lastDetails map[string]domain.AchievementDetail

		for _, strategy := range languageFallbackChain(languageHint, primaryLocale) {
			attemptCtx, cancel := context.WithTimeout(ctx, fetchAttemptTimeout)
			details, err := provider.GetSchemaAchievements(attemptCtx, appID, strategy.language)
			cancel()

			if errors.Is(err, domain.ErrNoSchema) {
				return resolveDegradedDetails(ctx, provider, appID, languageHint, primaryLocale, steamID)
			}
			if err != nil {
				logger.WarnContext(ctx, "Failed to fetch achievement schema",
					"appID", appID,
					"language", strategy.language,
					"error", err.Error(),
				)
				continue
			}

			lastDetails = details
			if detailsHaveAnyDescription(details) {
				break
			}
		}

		if lastDetails == nil {
			return nil, fmt.Errorf("%w: could not fetch achievement schema for app %d in any language", domain.ErrTemporarilyUnavailable, appID)
		}

		mergeGlobalPercentages(ctx, provider, appID, lastDetails)

		return lastDetails, nil
	}
}

// mergeGlobalPercentages fills in the global unlock percent per
// achievement. Best-effort: a failure leaves the percent fields nil and
// never fails resolution.
func mergeGlobalPercentages(ctx context.Context, provider steamapi.AchievementProvider, appID uint32, details map[string]domain.AchievementDetail) {
	percentCtx, cancel := context.WithTimeout(ctx, fetchAttemptTimeout)
	defer cancel()

	percentages, err := provider.GetGlobalPercentages(percentCtx, appID)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to fetch global achievement percentages", "appID", appID, "error", err.Error())
		return
	}

	for apiName, detail := range details {
		if percent, ok := percentages[apiName]; ok {
			percent := percent
			detail.GlobalPercent = &percent
			details[apiName] = detail
		}
	}
}

// resolveDegradedDetails derives minimal detail records (name and
// description only) from the per-player achievement list. Used when the
// schema endpoint rejects the game.
func resolveDegradedDetails(
	ctx context.Context,
	provider steamapi.AchievementProvider,
	appID uint32,
	languageHint string,
	primaryLocale string,
	steamID string,
) (map[string]domain.AchievementDetail, error) {
	logger := logging.FromContext(ctx)

	if steamID == "" {
		return nil, fmt.Errorf("%w: degraded detail lookup requires a steam id", domain.ErrMissingCredentials)
	}

	details := make(map[string]domain.AchievementDetail)
	for _, strategy := range languageFallbackChain(languageHint, primaryLocale) {
		attemptCtx, cancel := context.WithTimeout(ctx, fetchAttemptTimeout)
		achievements, err := provider.GetPlayerAchievements(attemptCtx, steamID, appID, strategy.language)
		cancel()

		if err != nil {
			logger.WarnContext(ctx, "Failed degraded detail fetch",
				"appID", appID,
				"language", strategy.language,
				"error", err.Error(),
			)
			continue
		}

		for _, achievement := range achievements {
			name := achievement.Name
			if name == "" {
				name = achievement.APIName
			}
			details[achievement.APIName] = domain.AchievementDetail{
				Name:        name,
				Description: achievement.Description,
			}
		}

		if hasAnyDescription(achievements) {
			break
		}
	}

	if len(details) == 0 {
		return nil, fmt.Errorf("%w: degraded detail lookup yielded no achievements for app %d", domain.ErrTemporarilyUnavailable, appID)
	}

	return details, nil
}
