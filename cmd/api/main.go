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
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sfhaven/haven/internal/adapters/http"
	natsadapter "github.com/sfhaven/haven/internal/adapters/nats"
	"github.com/sfhaven/haven/internal/adapters/postgres"
	"github.com/sfhaven/haven/internal/adapters/valkey"
	"github.com/sfhaven/haven/internal/core/ports"
	"github.com/sfhaven/haven/internal/core/usecases"
	"github.com/sfhaven/haven/internal/pkg/config"
	"github.com/sfhaven/haven/internal/pkg/logging"
	"github.com/sfhaven/haven/internal/pkg/metrics"
	"github.com/sfhaven/haven/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("haven-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("haven-api", logLevel, "json")

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

	// City timezone: posted parking rules are written in local civil time
	loc, err := cfg.City.Location()
	if err != nil {
		log.Fatalf("city timezone: %v", err)
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Keep pool gauges fresh for Prometheus
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Cache is optional; a nil CacheService just means every read hits the DB.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS is optional too; without it, alert reports still persist but are
	// not fanned out live.
	var eventPub ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
		eventPub = publisher
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	zoneRepo := postgres.NewZoneRepo(db)
	alertRepo := postgres.NewAlertRepo(db)
	serviceRepo := postgres.NewServiceRepo(db)
	emergencyRepo := postgres.NewEmergencyRepo(db)

	// Use cases
	parkingSvc := usecases.NewParkingService(zoneRepo, alertRepo, cacheSvc, eventPub, loc, cfg.Parking.AlertOverlayRadiusMeters)
	serviceSvc := usecases.NewServiceService(serviceRepo, cacheSvc)
	emergencySvc := usecases.NewEmergencyService(emergencyRepo)

	deps := &http.Dependencies{
		Parking:   parkingSvc,
		Services:  serviceSvc,
		Emergency: emergencySvc,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "SF Haven API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.sfhaven.org",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "city", cfg.City.Name)
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
