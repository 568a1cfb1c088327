package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Eknes/laurel/internal/adapters/blacklist"
	"github.com/Eknes/laurel/internal/adapters/cache"
	"github.com/Eknes/laurel/internal/adapters/database"
	"github.com/Eknes/laurel/internal/adapters/steamapi"
	"github.com/Eknes/laurel/internal/adapters/unlockhistory"
	"github.com/Eknes/laurel/internal/adapters/unlockstore"
	"github.com/Eknes/laurel/internal/app"
	"github.com/Eknes/laurel/internal/config"
	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/logging"
	"github.com/Eknes/laurel/internal/ports"
	"github.com/Eknes/laurel/internal/reporting"
	"github.com/Eknes/laurel/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "golang.org/x/crypto/x509roots/fallback"
)

const serviceName = "laurel"

func main() {
	instanceID := uuid.New().String()
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	if project := os.Getenv("GOOGLE_CLOUD_PROJECT"); project != "" {
		logHandler = logging.NewGoogleCloudTracingLogHandler(logHandler, project)
	}
	logger := slog.New(logHandler).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	ctx := logging.AddToContext(context.Background(), logger)

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	otelShutdown, err := telemetry.SetupOTelSDK(ctx, serviceName)
	if err != nil {
		fail("Failed to initialize OpenTelemetry", "error", err.Error())
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	blacklistGuard := blacklist.NewJSONFileGuard(ctx, config.DataDir())
	unlockStore := unlockstore.NewJSONFileStore(ctx, config.DataDir())
	logger.Info("Loaded durable state", "dataDir", config.DataDir())

	detailsCache := cache.NewProcessLifetimeCache[map[string]domain.AchievementDetail]()

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   10 * time.Second,
	}
	steamAPI, err := steamapi.NewSteamAPIOrMock(config, httpClient)
	if err != nil {
		fail("Failed to initialize Steam API", "error", err.Error())
	}
	logger.Info("Initialized Steam API")

	achievementProvider := steamapi.NewAchievementProvider(steamAPI)

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	logger.Info("Initializing database connection")
	db, err := database.NewCloudsqlPostgresDatabase(config)
	if err != nil {
		fail("Failed to initialize database connection", "error", err.Error())
	}
	logger.Info("Initialized database connection")

	schemaName := database.GetSchemaName(!config.IsProduction())

	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, schemaName)
	if err != nil {
		fail("Failed to migrate database", "error", err.Error())
	}

	unlockHistory := unlockhistory.NewPostgresUnlockHistory(db, schemaName)
	logger.Info("Initialized UnlockHistory")

	fetchUnlockedAchievements := app.BuildFetchUnlockedAchievements(achievementProvider, blacklistGuard, config.PrimaryLocale())
	reconcileAchievements := app.BuildReconcileAchievements(fetchUnlockedAchievements, unlockStore, unlockHistory, time.Now)
	clearTrackedGame := app.BuildClearTrackedGame(unlockStore)
	resolveAchievementDetails := app.BuildResolveAchievementDetails(detailsCache, achievementProvider, blacklistGuard, config.PrimaryLocale())

	http.HandleFunc(
		"POST /v1/reconcile",
		ports.MakeReconcileHandler(
			reconcileAchievements,
			resolveAchievementDetails,
			logger.With("port", "reconcile"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"GET /v1/details",
		ports.MakeDetailsHandler(
			resolveAchievementDetails,
			logger.With("port", "details"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"DELETE /v1/tracked",
		ports.MakeClearTrackedHandler(
			clearTrackedGame,
			logger.With("port", "tracked"),
			sentryMiddleware,
		),
	)

	logger.Info("Init complete")
	err = http.ListenAndServe(fmt.Sprintf(":%s", config.Port()), otelhttp.NewHandler(http.DefaultServeMux, "laurel"))
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
