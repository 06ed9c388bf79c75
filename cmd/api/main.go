package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/greggyneo/homefinder/internal/adapters/http"
	natsadapter "github.com/greggyneo/homefinder/internal/adapters/nats"
	"github.com/greggyneo/homefinder/internal/adapters/postgres"
	"github.com/greggyneo/homefinder/internal/adapters/valkey"
	"github.com/greggyneo/homefinder/internal/core/ports"
	"github.com/greggyneo/homefinder/internal/core/usecases"
	"github.com/greggyneo/homefinder/internal/pkg/config"
	"github.com/greggyneo/homefinder/internal/pkg/logging"
	"github.com/greggyneo/homefinder/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("homefinder-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("homefinder-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache. Keep the interface nil when the client failed to build: a
	// typed-nil client behind the interface would defeat the services'
	// nil checks.
	var cache ports.CacheService
	cacheClient, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, serving uncached", "error", err)
	} else {
		defer cacheClient.Close()
		cache = cacheClient
	}

	// NATS, same rule as the cache.
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	resaleRepo := postgres.NewResaleRepo(db)
	amenityRepo := postgres.NewAmenityRepo(db)
	scenarioRepo := postgres.NewScenarioRepo(db)
	lendingRepo := postgres.NewLendingRepo(db)

	// Use cases
	metaSvc := usecases.NewMetaService(resaleRepo, lendingRepo, cache)
	trendSvc := usecases.NewTrendService(resaleRepo, cache)
	amenitySvc := usecases.NewAmenityService(amenityRepo, cache, events)
	affordabilitySvc := usecases.NewAffordabilityService(lendingRepo)
	comparisonSvc := usecases.NewComparisonService(resaleRepo, amenityRepo)
	scenarioSvc := usecases.NewScenarioService(scenarioRepo)

	deps := &http.Dependencies{
		Meta:          metaSvc,
		Trends:        trendSvc,
		Amenities:     amenitySvc,
		Affordability: affordabilitySvc,
		Comparisons:   comparisonSvc,
		Scenarios:     scenarioSvc,
		NATS:          natsConn,
		DB:            db,
		Cache:         cacheClient,
	}

	// Relay import events to the broadcast channel so connected dashboards
	// refresh their amenity layers, and drop stale meta caches on refresh.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		err = sub.SubscribeAmenitiesImported(ctx, func(ctx context.Context, batchID string, count int) error {
			if pub != nil {
				payload, _ := json.Marshal(map[string]any{
					"event":    "amenities_imported",
					"batch_id": batchID,
					"count":    count,
				})
				return pub.PublishBroadcast(ctx, payload)
			}
			return nil
		})
		if err != nil {
			slog.Warn("subscribe imports failed", "error", err)
		}
		err = sub.SubscribeDatasetRefresh(ctx, func(ctx context.Context, dataset string) error {
			slog.Info("dataset refreshed, dropping meta cache", "dataset", dataset)
			metaSvc.Invalidate(ctx)
			return nil
		})
		if err != nil {
			slog.Warn("subscribe dataset refresh failed", "error", err)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    16 * 1024 * 1024, // GeoJSON import batches can be large
		AppName:      "HomeFinder API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
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

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
