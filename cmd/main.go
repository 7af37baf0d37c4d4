package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tickhubhq/tickhub-backend/internal/app"
	"github.com/tickhubhq/tickhub-backend/internal/clients/jira"
	redisclient "github.com/tickhubhq/tickhub-backend/internal/clients/redis"
	"github.com/tickhubhq/tickhub-backend/internal/clients/zendesk"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos"
	"github.com/tickhubhq/tickhub-backend/internal/db"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/fetch"
	"github.com/tickhubhq/tickhub-backend/internal/handlers"
	"github.com/tickhubhq/tickhub-backend/internal/middleware"
	"github.com/tickhubhq/tickhub-backend/internal/observability"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
	"github.com/tickhubhq/tickhub-backend/internal/scheduler"
	"github.com/tickhubhq/tickhub-backend/internal/server"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

func main() {
	_ = godotenv.Load()
	cfg := app.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing
	if shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "tickhub-backend",
		Environment: cfg.LogMode,
	}); shutdown != nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	bundle := repos.New(thePG, log)

	// Token cipher
	secrets, err := services.NewSecretCipher(log, cfg.TokenCipherKey)
	if err != nil {
		log.Fatal("Could not init SecretCipher", "error", err)
	}

	// Redis event bus (optional)
	var syncBus redisclient.SyncBus
	var events services.SyncEventPublisher
	if cfg.RedisEnabled {
		syncBus, err = redisclient.NewSyncBus(log)
		if err != nil {
			log.Warn("Could not init redis sync bus, events disabled", "error", err)
		} else {
			defer func() { _ = syncBus.Close() }()
			events = syncBus
		}
	}

	// Fetchers
	fetchers := map[string]services.FetcherFactory{
		types.SourceZendesk: func(integ *types.Integration, token string) (fetch.Fetcher, error) {
			return zendesk.New(log, integ, token)
		},
		types.SourceJira: func(integ *types.Integration, token string) (fetch.Fetcher, error) {
			return jira.New(log, integ, token)
		},
	}

	// Services
	log.Info("Setting up services...")
	syncService := services.NewSyncService(
		thePG, log,
		bundle.Integrations, bundle.SyncLogs, bundle.Records,
		secrets, fetchers, events,
		services.SyncOptions{
			BatchDelay:  cfg.SyncBatchDelay,
			PageDelay:   cfg.SyncPageDelay,
			PassTimeout: cfg.SyncPassTimeout,
		},
	)
	linkingService := services.NewLinkingService(thePG, log, bundle.Records, bundle.FieldMappings, bundle.RecordLinks)
	mappingService := services.NewMappingService(thePG, log, bundle.FieldMappings)
	integrationService := services.NewIntegrationService(thePG, log, bundle.Integrations, bundle.SyncLogs, secrets,
		[]string{types.SourceZendesk, types.SourceJira})
	columnService := services.NewColumnService(thePG, log, bundle.CustomColumns)
	recordService := services.NewRecordService(thePG, log, bundle.Records)

	// Mapping seed
	if cfg.MappingSeedPath != "" {
		if err := app.SeedMappings(ctx, log, mappingService, cfg.MappingSeedPath); err != nil {
			log.Fatal("Mapping seed failed", "error", err)
		}
	}

	// Scheduler
	sched := scheduler.New(log, bundle.Integrations, syncService, linkingService, scheduler.Options{
		CronSpec:      cfg.SyncCronSpec,
		MaxConcurrent: cfg.SyncMaxConcurrent,
	})
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Scheduler start failed", "error", err)
	}

	// Middleware
	authMiddleware, err := middleware.NewAuthMiddleware(log, cfg.JWTSecret)
	if err != nil {
		log.Fatal("Could not init auth middleware", "error", err)
	}

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:      authMiddleware,
		SyncHandler:         handlers.NewSyncHandler(syncService, bundle.Integrations),
		LinkingHandler:      handlers.NewLinkingHandler(linkingService),
		RecordsHandler:      handlers.NewRecordsHandler(recordService),
		MappingsHandler:     handlers.NewMappingsHandler(mappingService),
		SyncLogsHandler:     handlers.NewSyncLogsHandler(integrationService),
		ColumnsHandler:      handlers.NewColumnsHandler(columnService),
		IntegrationsHandler: handlers.NewIntegrationsHandler(integrationService),
		AllowOrigins:        cfg.AllowOrigins,
	})

	log.Info("Server listening", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
