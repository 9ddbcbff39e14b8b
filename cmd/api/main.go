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

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/http"
	natsadapter "github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/nats"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/postgres"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/valkey"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/ports"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/config"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/geojson"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/logging"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/telemetry"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/session"
)

func main() {
	cfg, err := config.Load("mapdisplay-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

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
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	stationRepo := postgres.NewStationRepo(db)
	sceneRepo := postgres.NewSceneRepo(db)

	// Engines. The cache goes in via a local interface variable so a
	// failed valkey connect stays a true nil, not a typed-nil *Cache.
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	stationSvc := usecases.NewStationService(stationRepo, cacheSvc)
	projectionSvc := usecases.NewProjectionService(cfg.Viewport.DefaultFitScale)
	zoomSvc := usecases.NewZoomService(cfg.Viewport.AreaPerDistance)
	sceneSvc := usecases.NewSceneService(cfg.Viewport.HysteresisTicks)
	tripCtl := usecases.NewTripController()

	boundaries := loadBoundaries(cfg.Viewport.BoundaryFile)
	home := homeViewport(cfg, projectionSvc, boundaries)
	viewportSvc := usecases.NewViewportService(
		home, projectionSvc, zoomSvc, sceneSvc, tripCtl,
		stationSvc, cfg.Viewport.AreaPerDistance,
	)

	// Session actor
	sessionCfg := session.Config{
		SessionID: "default",
		TickHz:    cfg.Viewport.TickHz,
		Viewport:  viewportSvc,
	}
	if nc != nil {
		// Assign only on success: a typed-nil *Publisher would slip past
		// the runner's nil check.
		sessionCfg.Publisher = nc
	}
	runner := session.New(sessionCfg)

	// Initial scene catalog + periodic refresh
	if scenes, err := sceneRepo.ListAll(ctx); err != nil {
		slog.Warn("scene catalog load failed", "error", err)
	} else {
		runner.RefreshCatalog(scenes)
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scenes, err := sceneRepo.ListAll(ctx)
				if err != nil {
					slog.Warn("scene catalog refresh failed", "error", err)
					continue
				}
				runner.RefreshCatalog(scenes)
			}
		}
	}()

	go func() {
		if err := runner.Run(ctx); err != nil {
			slog.Error("session runner stopped", "error", err)
		}
	}()

	deps := &http.Dependencies{
		Stations:   stationSvc,
		Projection: projectionSvc,
		Zoom:       zoomSvc,
		Scenes:     sceneRepo,
		Session:    runner,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
		Boundaries: boundaries,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "MapDisplay API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
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

// loadBoundaries reads the boundary GeoJSON dataset. A missing or broken
// file is not fatal: boundaries only affect the home fit and the
// /v1/boundaries endpoint.
func loadBoundaries(path string) []domain.BoundaryFeature {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("boundary file unavailable", "file", path, "error", err)
		return nil
	}
	fc, err := geojson.Decode(data)
	if err != nil {
		slog.Warn("boundary file unreadable", "file", path, "error", err)
		return nil
	}
	return geojson.Boundaries(fc)
}

// homeViewport builds the initial camera pose: a fit of the boundary
// dataset when it loads, a country-scale default otherwise.
func homeViewport(cfg *config.Config, projection *usecases.ProjectionService, boundaries []domain.BoundaryFeature) domain.Viewport {
	home := domain.Viewport{
		CenterLat: 22.5, CenterLon: 82.5,
		Scale:  cfg.Viewport.DefaultFitScale,
		Width:  cfg.Viewport.DefaultWidth,
		Height: cfg.Viewport.DefaultHeight,
	}

	pts := geojson.BoundaryPoints(boundaries)
	bounds, err := projection.CalculateBounds(pts)
	if err != nil {
		slog.Warn("boundary bounds empty, using default home view", "error", err)
		return home
	}

	fit := projection.FitMapToView(bounds, home.Width, home.Height, 0.1)
	home.CenterLat, home.CenterLon, home.Scale = fit.CenterLat, fit.CenterLon, fit.Scale
	return home
}
