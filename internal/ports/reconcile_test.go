package ports_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Eknes/laurel/internal/app"
	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/ports"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func noopMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r)
	}
}

func fixedResolve(details map[string]domain.AchievementDetail, err error) app.ResolveAchievementDetails {
	return func(ctx context.Context, groupID string, appID uint32, languageHint string, steamID string) (map[string]domain.AchievementDetail, error) {
		return details, err
	}
}

func TestMakeReconcileHandler(t *testing.T) {
	t.Parallel()

	const target = "/v1/reconcile?group=group1&steamid=76561198000000001&appid=440"

	makeReconcile := func(result app.ReconciliationResult, err error) app.ReconcileAchievements {
		return func(ctx context.Context, identity domain.TrackedIdentity) (app.ReconciliationResult, error) {
			return result, err
		}
	}

	percent := 51.5
	details := map[string]domain.AchievementDetail{
		"ACH_A": {Name: "Achievement A", Description: "Old."},
		"ACH_C": {Name: "Achievement C", Description: "New.", GlobalPercent: &percent},
	}

	t.Run("successful reconciliation", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeReconcileHandler(
			makeReconcile(app.ReconciliationResult{NewlyUnlocked: []string{"ACH_C"}, UnlockedCount: 2}, nil),
			fixedResolve(details, nil),
			testLogger,
			noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{
			"success": true,
			"newlyUnlocked": ["ACH_C"],
			"unlockedCount": 2,
			"totalCount": 2,
			"details": {
				"ACH_C": {"name": "Achievement C", "description": "New.", "icon": null, "iconGray": null, "percent": 51.5}
			}
		}`, w.Body.String())
	})

	t.Run("details failure does not fail the reconciliation response", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeReconcileHandler(
			makeReconcile(app.ReconciliationResult{NewlyUnlocked: []string{"ACH_C"}, UnlockedCount: 2}, nil),
			fixedResolve(nil, fmt.Errorf("%w: no luck", domain.ErrTemporarilyUnavailable)),
			testLogger,
			noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{
			"success": true,
			"newlyUnlocked": ["ACH_C"],
			"unlockedCount": 2
		}`, w.Body.String())
	})

	t.Run("private profile maps to 403", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeReconcileHandler(
			makeReconcile(app.ReconciliationResult{}, fmt.Errorf("%w: status 401", domain.ErrPermissionDenied)),
			fixedResolve(nil, nil),
			testLogger,
			noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))

		require.Equal(t, http.StatusForbidden, w.Code)
		require.JSONEq(t, `{"success":false,"cause":"profile is private"}`, w.Body.String())
	})

	t.Run("unavailable game maps to 404", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeReconcileHandler(
			makeReconcile(app.ReconciliationResult{}, fmt.Errorf("%w: blacklisted", domain.ErrGameUnavailable)),
			fixedResolve(nil, nil),
			testLogger,
			noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid parameters map to 400", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeReconcileHandler(
			makeReconcile(app.ReconciliationResult{}, nil),
			fixedResolve(nil, nil),
			testLogger,
			noopMiddleware,
		)

		for _, target := range []string{
			"/v1/reconcile?steamid=76561198000000001&appid=440",
			"/v1/reconcile?group=group1&appid=440",
			"/v1/reconcile?group=group1&steamid=not-a-steamid&appid=440",
			"/v1/reconcile?group=group1&steamid=76561198000000001",
			"/v1/reconcile?group=group1&steamid=76561198000000001&appid=0",
			"/v1/reconcile?group=group1&steamid=76561198000000001&appid=forty",
		} {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))
			require.Equal(t, http.StatusBadRequest, w.Code, "target: %s", target)
		}
	})

	t.Run("wrong method maps to 405", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeReconcileHandler(
			makeReconcile(app.ReconciliationResult{}, nil),
			fixedResolve(nil, nil),
			testLogger,
			noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
