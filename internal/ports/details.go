package ports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Eknes/laurel/internal/app"
	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/logging"
	"github.com/Eknes/laurel/internal/ratelimiting"
	"github.com/Eknes/laurel/internal/reporting"
)

type detailsResponse struct {
	Success bool                                  `json:"success"`
	Details map[string]achievementDetailResponse `json:"details,omitempty"`
	Cause   string                                `json:"cause,omitempty"`
}

func MakeDetailsHandler(
	resolveAchievementDetails app.ResolveAchievementDetails,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ratelimiting.NewTokenBucketRateLimiter(
			ratelimiting.RefillPerSecond(8),
			ratelimiting.BurstSize(480),
		),
		ratelimiting.IPKeyFunc,
	)

	onLimitExceeded := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, []byte(`{"success":false,"cause":"rate limit exceeded"}`))
	}

	middleware := ComposeMiddlewares(
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("details"),
		buildMetricsMiddleware("details"),
		NewRateLimitMiddleware(ipRateLimiter, onLimitExceeded),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodGet {
			writeErrorResponse(ctx, w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		groupID, err := parseGroupID(r)
		if err != nil {
			writeErrorResponse(ctx, w, err.Error(), http.StatusBadRequest)
			return
		}
		appID, err := parseAppID(r)
		if err != nil {
			writeErrorResponse(ctx, w, err.Error(), http.StatusBadRequest)
			return
		}

		// Optional: enables the degraded per-player lookup for games the
		// schema endpoint rejects
		steamID := r.URL.Query().Get("steamid")
		languageHint := r.URL.Query().Get("l")

		details, err := resolveAchievementDetails(ctx, groupID, appID, languageHint, steamID)
		if errors.Is(err, domain.ErrMissingCredentials) {
			writeErrorResponse(ctx, w, "steamid required for this game", http.StatusBadRequest)
			return
		} else if errors.Is(err, domain.ErrTemporarilyUnavailable) {
			writeErrorResponse(ctx, w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		} else if err != nil {
			// NOTE: ResolveAchievementDetails implementations handle their own error reporting
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(detailsResponse{
			Success: true,
			Details: detailsToResponse(details),
		})
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to marshal details response: %w", err))
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, body)
	}

	return middleware(handler)
}
