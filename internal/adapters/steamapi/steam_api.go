package steamapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Eknes/laurel/internal/config"
	"github.com/Eknes/laurel/internal/constants"
	"github.com/Eknes/laurel/internal/logging"
	"github.com/Eknes/laurel/internal/ratelimiting"
	"github.com/Eknes/laurel/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const steamAPIBaseURL = "https://api.steampowered.com"

const steamRequestMinOperationTime = 150 * time.Millisecond

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RequestLimiter interface {
	Limit(ctx context.Context, maxOperationTime time.Duration, operation func(ctx context.Context)) bool
}

// SteamAPI returns the raw response body and status code of each
// endpoint. Status code interpretation lives in the response parsers.
type SteamAPI interface {
	GetPlayerAchievements(ctx context.Context, steamID string, appID uint32, language string) ([]byte, int, error)
	GetSchemaForGame(ctx context.Context, appID uint32, language string) ([]byte, int, error)
	GetGlobalAchievementPercentages(ctx context.Context, appID uint32) ([]byte, int, error)
}

type mockedSteamAPI struct{}

func (s *mockedSteamAPI) GetPlayerAchievements(ctx context.Context, steamID string, appID uint32, language string) ([]byte, int, error) {
	return []byte(`{"playerstats":{"success":true,"achievements":[{"apiname":"ACH_WIN_ONE_GAME","achieved":1,"name":"Winner","description":"Win one game."}]}}`), 200, nil
}

func (s *mockedSteamAPI) GetSchemaForGame(ctx context.Context, appID uint32, language string) ([]byte, int, error) {
	return []byte(`{"game":{"availableGameStats":{"achievements":[{"name":"ACH_WIN_ONE_GAME","displayName":"Winner","description":"Win one game.","icon":"https://example.com/icon.jpg","icongray":"https://example.com/icongray.jpg"}]}}}`), 200, nil
}

func (s *mockedSteamAPI) GetGlobalAchievementPercentages(ctx context.Context, appID uint32) ([]byte, int, error) {
	return []byte(`{"achievementpercentages":{"achievements":[{"name":"ACH_WIN_ONE_GAME","percent":51.2}]}}`), 200, nil
}

type steamAPIMetricsCollection struct {
	requestCount metric.Int64Counter
}

func setupSteamAPIMetrics(meter metric.Meter) (steamAPIMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("steamapi/request_count")
	if err != nil {
		return steamAPIMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	return steamAPIMetricsCollection{
		requestCount: requestCount,
	}, nil
}

type steamAPIImpl struct {
	httpClient HttpClient
	apiKey     string
	limiter    RequestLimiter

	metrics steamAPIMetricsCollection
	tracer  trace.Tracer
}

func (s *steamAPIImpl) GetPlayerAchievements(ctx context.Context, steamID string, appID uint32, language string) ([]byte, int, error) {
	query := url.Values{}
	query.Set("key", s.apiKey)
	query.Set("steamid", steamID)
	query.Set("appid", fmt.Sprintf("%d", appID))
	query.Set("l", language)

	return s.get(ctx, "ISteamUserStats/GetPlayerAchievements/v1", query)
}

func (s *steamAPIImpl) GetSchemaForGame(ctx context.Context, appID uint32, language string) ([]byte, int, error) {
	query := url.Values{}
	query.Set("key", s.apiKey)
	query.Set("appid", fmt.Sprintf("%d", appID))
	query.Set("l", language)

	return s.get(ctx, "ISteamUserStats/GetSchemaForGame/v2", query)
}

func (s *steamAPIImpl) GetGlobalAchievementPercentages(ctx context.Context, appID uint32) ([]byte, int, error) {
	query := url.Values{}
	query.Set("gameid", fmt.Sprintf("%d", appID))

	return s.get(ctx, "ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2", query)
}

func (s *steamAPIImpl) get(ctx context.Context, endpoint string, query url.Values) ([]byte, int, error) {
	ctx, span := s.tracer.Start(ctx, "SteamAPI.get", trace.WithAttributes(attribute.String("endpoint", endpoint)))
	defer span.End()

	requestURL := fmt.Sprintf("%s/%s/?%s", steamAPIBaseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return nil, -1, err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)

	var resp *http.Response
	var data []byte

	start := time.Now()
	ran := s.limiter.Limit(ctx, steamRequestMinOperationTime, func(ctx context.Context) {
		ctx, span := s.tracer.Start(ctx, "SteamAPI.httpget")
		defer span.End()

		resp, err = s.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("failed to send request: %w", err)
			return
		}

		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			err = fmt.Errorf("failed to read response body: %w", err)
			return
		}
	})
	if !ran {
		logging.FromContext(ctx).WarnContext(ctx, "Did not call steam API due to rate limiting", "endpoint", endpoint, "ctx_error", ctx.Err())
		return nil, -1, fmt.Errorf("too many requests to steam API")
	}
	if err != nil {
		reporting.Report(ctx, err, map[string]string{"endpoint": endpoint})
		return nil, -1, err
	}

	s.metrics.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.Int("status_code", resp.StatusCode),
		),
	)
	logging.FromContext(ctx).InfoContext(ctx, "steam request completed", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start).String())

	return data, resp.StatusCode, nil
}

func NewSteamAPI(httpClient HttpClient, apiKey string, nowFunc func() time.Time, afterFunc func(time.Duration) <-chan time.Time) (SteamAPI, error) {
	const name = "laurel/steamapi"

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupSteamAPIMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	// Steam allows 100 000 Web API calls per day per key
	limiter := ratelimiting.NewWindowLimitRequestLimiter(100_000, 24*time.Hour, nowFunc, afterFunc)

	return &steamAPIImpl{
		httpClient: httpClient,
		apiKey:     apiKey,
		limiter:    limiter,

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

func NewSteamAPIOrMock(config config.Config, httpClient HttpClient) (SteamAPI, error) {
	if config.SteamAPIKey() != "" {
		return NewSteamAPI(httpClient, config.SteamAPIKey(), time.Now, time.After)
	}
	if config.IsDevelopment() {
		return &mockedSteamAPI{}, nil
	}
	return nil, fmt.Errorf("missing steam API key in non-development environment")
}
