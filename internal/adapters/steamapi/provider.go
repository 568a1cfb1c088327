package steamapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/reporting"
)

type steamAchievementProvider struct {
	steamAPI SteamAPI
}

func NewAchievementProvider(steamAPI SteamAPI) AchievementProvider {
	return &steamAchievementProvider{
		steamAPI: steamAPI,
	}
}

func (p *steamAchievementProvider) GetPlayerAchievements(ctx context.Context, steamID string, appID uint32, language string) ([]domain.PlayerAchievement, error) {
	data, statusCode, err := p.steamAPI.GetPlayerAchievements(ctx, steamID, appID, language)
	if err != nil {
		// NOTE: SteamAPI implementations handle their own error reporting
		return nil, fmt.Errorf("%w: failed to get player achievements: %w", domain.ErrTemporarilyUnavailable, err)
	}

	achievements, err := playerAchievementsFromResponse(statusCode, data)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			// Profile privacy is a client condition, not an error on our end
			return nil, err
		}

		err := fmt.Errorf("failed to get achievements from player achievements response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"data":   string(data),
			"status": strconv.Itoa(statusCode),
		})
		return nil, err
	}

	return achievements, nil
}

func (p *steamAchievementProvider) GetSchemaAchievements(ctx context.Context, appID uint32, language string) (map[string]domain.AchievementDetail, error) {
	data, statusCode, err := p.steamAPI.GetSchemaForGame(ctx, appID, language)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get schema for game: %w", domain.ErrTemporarilyUnavailable, err)
	}

	details, err := detailsFromSchemaResponse(appID, statusCode, data)
	if err != nil {
		if errors.Is(err, domain.ErrNoSchema) {
			// Expected for games without achievements; triggers the degraded path
			return nil, err
		}

		err := fmt.Errorf("failed to get details from schema response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"data":   string(data),
			"status": strconv.Itoa(statusCode),
		})
		return nil, err
	}

	return details, nil
}

func (p *steamAchievementProvider) GetGlobalPercentages(ctx context.Context, appID uint32) (map[string]float64, error) {
	data, statusCode, err := p.steamAPI.GetGlobalAchievementPercentages(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get global achievement percentages: %w", domain.ErrTemporarilyUnavailable, err)
	}

	percentages, err := percentagesFromResponse(statusCode, data)
	if err != nil {
		err := fmt.Errorf("failed to get percentages from global percentages response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"data":   string(data),
			"status": strconv.Itoa(statusCode),
		})
		return nil, err
	}

	return percentages, nil
}
