package ports

import (
	"context"
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

type reconcileResponse struct {
	Success       bool                                 `json:"success"`
	NewlyUnlocked []string                             `json:"newlyUnlocked,omitempty"`
	UnlockedCount int                                  `json:"unlockedCount,omitempty"`
	TotalCount    int                                  `json:"totalCount,omitempty"`
	Details       map[string]achievementDetailResponse `json:"details,omitempty"`
	Cause         string                               `json:"cause,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

func writeErrorResponse(ctx context.Context, w http.ResponseWriter, cause string, statusCode int) {
	body, err := json.Marshal(reconcileResponse{Success: false, Cause: cause})
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal error response: %w", err))
		writeJSON(w, http.StatusInternalServerError, []byte(`{"success":false,"cause":"internal server error"}`))
		return
	}
	writeJSON(w, statusCode, body)
}

func statusCodeForReconcileError(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return "profile is private", http.StatusForbidden
	case errors.Is(err, domain.ErrGameUnavailable):
		return "achievement data unavailable for game", http.StatusNotFound
	case errors.Is(err, domain.ErrTemporarilyUnavailable):
		return "temporarily unavailable", http.StatusServiceUnavailable
	default:
		return "internal server error", http.StatusInternalServerError
	}
}

func MakeReconcileHandler(
	reconcileAchievements app.ReconcileAchievements,
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
	groupRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		ratelimiting.NewTokenBucketRateLimiter(
			ratelimiting.RefillPerSecond(2),
			ratelimiting.BurstSize(120),
		),
		ratelimiting.GroupKeyFunc,
	)

	onLimitExceeded := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, []byte(`{"success":false,"cause":"rate limit exceeded"}`))
	}

	middleware := ComposeMiddlewares(
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("reconcile"),
		buildMetricsMiddleware("reconcile"),
		NewRateLimitMiddleware(ipRateLimiter, onLimitExceeded),
		NewRateLimitMiddleware(groupRateLimiter, onLimitExceeded),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodPost {
			writeErrorResponse(ctx, w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		identity, err := parseIdentity(r)
		if err != nil {
			writeErrorResponse(ctx, w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("identity", identity.Key()))
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{
			"identity": identity.Key(),
		})

		result, err := reconcileAchievements(ctx, identity)
		if err != nil {
			// NOTE: ReconcileAchievements implementations handle their own error reporting
			cause, statusCode := statusCodeForReconcileError(err)
			writeErrorResponse(ctx, w, cause, statusCode)
			return
		}

		languageHint := r.URL.Query().Get("l")
		allDetails, err := resolveAchievementDetails(ctx, identity.GroupID, identity.AppID, languageHint, identity.SteamID)
		if err != nil {
			// Details are auxiliary to the reconciliation outcome
			logging.FromContext(ctx).WarnContext(ctx, "Failed to resolve achievement details", "identity", identity.Key(), "error", err.Error())
			allDetails = map[string]domain.AchievementDetail{}
		}

		newDetails := make(map[string]domain.AchievementDetail, len(result.NewlyUnlocked))
		for _, apiName := range result.NewlyUnlocked {
			if detail, ok := allDetails[apiName]; ok {
				newDetails[apiName] = detail
			}
		}

		body, err := json.Marshal(reconcileResponse{
			Success:       true,
			NewlyUnlocked: result.NewlyUnlocked,
			UnlockedCount: result.UnlockedCount,
			TotalCount:    len(allDetails),
			Details:       detailsToResponse(newDetails),
		})
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to marshal reconcile response: %w", err))
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, body)
	}

	return middleware(handler)
}
