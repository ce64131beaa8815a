package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/http"
	natsadapter "github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/nats"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/postgres"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/valkey"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/config"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/logging"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("recycleheat-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("recycleheat-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	db.StartPoolMetrics(ctx)

	// Cache
	cache, err := valkey.New(ctx, cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, running uncached", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, refresh fan-out disabled", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats raw conn unavailable", "error", err)
	}

	// Repos
	productionRepo := postgres.NewProductionRepo(db)
	consumptionRepo := postgres.NewConsumptionRepo(db)
	pipelineRepo := postgres.NewPipelineRepo(db)
	readingRepo := postgres.NewReadingRepo(db)
	configRepo := postgres.NewConfigRepo(db)

	// A nil *valkey.Cache must stay a nil interface inside the services.
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var pub ports.EventPublisher
	if publisher != nil {
		pub = publisher
	}

	// Use cases
	siteSvc := usecases.NewSiteService(productionRepo, consumptionRepo, pipelineRepo, cacheSvc)
	pipelineSvc := usecases.NewPipelineService(pipelineRepo, productionRepo, consumptionRepo)
	analyticsSvc := usecases.NewAnalyticsService(productionRepo, consumptionRepo, pipelineRepo, cacheSvc)
	readingSvc := usecases.NewReadingService(readingRepo, productionRepo, consumptionRepo, pub)
	configSvc := usecases.NewMapConfigService(configRepo, cacheSvc)

	store := usecases.NewEntityStore(siteSvc)
	if err := store.Refresh(ctx); err != nil {
		// Sessions stay in the loading state until a later refresh lands.
		slog.Warn("initial snapshot fetch failed", "error", err)
	}

	// Re-fetch whenever another instance announces a data change.
	if cfg.NATS.URL != "" {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("refresh subscription unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribeRefresh(ctx, func(ctx context.Context, ev *domain.RefreshEvent) error {
				slog.Info("refresh event received", "source", ev.Source)
				return store.Refresh(ctx)
			})
			if err != nil {
				slog.Warn("refresh subscribe failed", "error", err)
			}
		}
	}

	camera := usecases.CameraConfig{
		Pitch:      cfg.Map.Pitch,
		Bearing:    cfg.Map.Bearing,
		Transition: time.Duration(cfg.Map.TransitionMS) * time.Millisecond,
	}

	deps := &http.Dependencies{
		Sites:     siteSvc,
		Pipelines: pipelineSvc,
		Analytics: analyticsSvc,
		Readings:  readingSvc,
		Config:    configSvc,
		Store:     store,
		Camera:    camera,
		Publisher: pub,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "RecycleHeat API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
