package ports

import (
	"github.com/Eknes/laurel/internal/domain"
)

type achievementDetailResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        *string  `json:"icon"`
	IconGray    *string  `json:"iconGray"`
	Percent     *float64 `json:"percent"`
}

func detailToResponse(detail domain.AchievementDetail) achievementDetailResponse {
	return achievementDetailResponse{
		Name:        detail.Name,
		Description: detail.Description,
		Icon:        detail.IconURL,
		IconGray:    detail.GrayIconURL,
		Percent:     detail.GlobalPercent,
	}
}

func detailsToResponse(details map[string]domain.AchievementDetail) map[string]achievementDetailResponse {
	response := make(map[string]achievementDetailResponse, len(details))
	for apiName, detail := range details {
		response[apiName] = detailToResponse(detail)
	}
	return response
}
