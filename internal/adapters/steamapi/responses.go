package steamapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Eknes/laurel/internal/domain"
)

type playerAchievementsResponse struct {
	PlayerStats struct {
		Success      bool   `json:"success"`
		Error        string `json:"error"`
		Achievements []struct {
			APIName     string `json:"apiname"`
			Achieved    int    `json:"achieved"`
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"achievements"`
	} `json:"playerstats"`
}

func playerAchievementsFromResponse(statusCode int, data []byte) ([]domain.PlayerAchievement, error) {
	if statusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: steam API returned status code %d", domain.ErrPermissionDenied, statusCode)
	}
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: steam API returned status code %d", domain.ErrTemporarilyUnavailable, statusCode)
	}

	var response playerAchievementsResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse player achievements response: %w", domain.ErrTemporarilyUnavailable, err)
	}

	achievements := make([]domain.PlayerAchievement, 0, len(response.PlayerStats.Achievements))
	for _, achievement := range response.PlayerStats.Achievements {
		achievements = append(achievements, domain.PlayerAchievement{
			APIName:     achievement.APIName,
			Achieved:    achievement.Achieved == 1,
			Name:        achievement.Name,
			Description: achievement.Description,
		})
	}

	return achievements, nil
}

type schemaForGameResponse struct {
	Game struct {
		AvailableGameStats struct {
			Achievements []struct {
				Name        string `json:"name"`
				DisplayName string `json:"displayName"`
				Description string `json:"description"`
				Icon        string `json:"icon"`
				IconGray    string `json:"icongray"`
			} `json:"achievements"`
		} `json:"availableGameStats"`
	} `json:"game"`
}

// The schema endpoint returns bare asset hashes for older games and
// absolute urls for newer ones. Bare values are resolved against the
// community CDN.
func iconURL(appID uint32, value string) *string {
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return &value
	}
	resolved := fmt.Sprintf("https://cdn.akamai.steamstatic.com/steamcommunity/public/images/apps/%d/%s.jpg", appID, value)
	return &resolved
}

func detailsFromSchemaResponse(appID uint32, statusCode int, data []byte) (map[string]domain.AchievementDetail, error) {
	if statusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: steam API returned status code %d for app %d", domain.ErrNoSchema, statusCode, appID)
	}
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: steam API returned status code %d", domain.ErrTemporarilyUnavailable, statusCode)
	}

	var response schemaForGameResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse schema response: %w", domain.ErrTemporarilyUnavailable, err)
	}

	details := make(map[string]domain.AchievementDetail, len(response.Game.AvailableGameStats.Achievements))
	for _, achievement := range response.Game.AvailableGameStats.Achievements {
		name := achievement.DisplayName
		if name == "" {
			name = achievement.Name
		}
		details[achievement.Name] = domain.AchievementDetail{
			Name:        name,
			Description: achievement.Description,
			IconURL:     iconURL(appID, achievement.Icon),
			GrayIconURL: iconURL(appID, achievement.IconGray),
		}
	}

	return details, nil
}

type globalPercentagesResponse struct {
	AchievementPercentages struct {
		Achievements []struct {
			Name    string  `json:"name"`
			Percent float64 `json:"percent"`
		} `json:"achievements"`
	} `json:"achievementpercentages"`
}

func percentagesFromResponse(statusCode int, data []byte) (map[string]float64, error) {
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: steam API returned status code %d", domain.ErrTemporarilyUnavailable, statusCode)
	}

	var response globalPercentagesResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse global percentages response: %w", domain.ErrTemporarilyUnavailable, err)
	}

	percentages := make(map[string]float64, len(response.AchievementPercentages.Achievements))
	for _, achievement := range response.AchievementPercentages.Achievements {
		percentages[achievement.Name] = achievement.Percent
	}

	return percentages, nil
}
