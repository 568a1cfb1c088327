package ports

import (
	"log/slog"
	"net/http"

	"github.com/Eknes/laurel/internal/app"
	"github.com/Eknes/laurel/internal/logging"
	"github.com/Eknes/laurel/internal/ratelimiting"
	"github.com/Eknes/laurel/internal/reporting"
)

func MakeClearTrackedHandler(
	clearTrackedGame app.ClearTrackedGame,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ratelimiting.NewTokenBucketRateLimiter(
			ratelimiting.RefillPerSecond(2),
			ratelimiting.BurstSize(120),
		),
		ratelimiting.IPKeyFunc,
	)

	onLimitExceeded := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, []byte(`{"success":false,"cause":"rate limit exceeded"}`))
	}

	middleware := ComposeMiddlewares(
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("tracked"),
		buildMetricsMiddleware("tracked"),
		NewRateLimitMiddleware(ipRateLimiter, onLimitExceeded),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Method != http.MethodDelete {
			writeErrorResponse(ctx, w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		identity, err := parseIdentity(r)
		if err != nil {
			writeErrorResponse(ctx, w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := clearTrackedGame(ctx, identity); err != nil {
			// NOTE: ClearTrackedGame implementations handle their own error reporting
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Cleared tracked game", "identity", identity.Key())
		writeJSON(w, http.StatusOK, []byte(`{"success":true}`))
	}

	return middleware(handler)
}
