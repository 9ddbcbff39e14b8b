package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 240 requests per minute per IP. The interpreter posts
	// action batches in bursts, so this is looser than a typical read API.
	app.Use(limiter.New(limiter.Config{
		Max:        240,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/stations", timeout.NewWithContext(ListStationsHandler(deps), 15*time.Second))
	v1.Get("/stations/nearby", timeout.NewWithContext(NearbyStationsHandler(deps), 15*time.Second))
	v1.Get("/stations/search", timeout.NewWithContext(SearchStationsHandler(deps), 15*time.Second))
	v1.Get("/stations/level/:lod", timeout.NewWithContext(StationsByLevelHandler(deps), 15*time.Second))
	v1.Get("/stations/:id", timeout.NewWithContext(GetStationHandler(deps), 15*time.Second))
	v1.Get("/boundaries", BoundariesHandler(deps))
	v1.Get("/scenes", timeout.NewWithContext(ListScenesHandler(deps), 15*time.Second))
	v1.Get("/scenes/active", timeout.NewWithContext(ActiveScenesHandler(deps), 15*time.Second))
	v1.Get("/zoom/levels", ZoomLevelsHandler(deps))
	v1.Get("/zoom/classify", ClassifyZoomHandler(deps))
	v1.Get("/zoom/tile-config", TileConfigHandler(deps))
	v1.Get("/projection/geo-to-screen", GeoToScreenHandler(deps))
	v1.Get("/projection/screen-to-geo", ScreenToGeoHandler(deps))
	v1.Post("/projection/fit", FitHandler(deps))
	v1.Get("/viewport", ViewportHandler(deps))
	v1.Post("/viewport/actions", timeout.NewWithContext(ViewportActionsHandler(deps), 15*time.Second))
	v1.Post("/trips", timeout.NewWithContext(StartTripHandler(deps), 15*time.Second))
	v1.Get("/trips/current", CurrentTripHandler(deps))
	v1.Delete("/trips/current", StopTripHandler(deps))
	v1.Get("/catalog/status", timeout.NewWithContext(CatalogStatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
