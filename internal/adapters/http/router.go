package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
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
	v1.Get("/sites/production", timeout.NewWithContext(ListProductionSitesHandler(deps), 15*time.Second))
	v1.Post("/sites/production", timeout.NewWithContext(CreateProductionSiteHandler(deps), 15*time.Second))
	v1.Get("/sites/production/:id", timeout.NewWithContext(GetProductionSiteHandler(deps), 15*time.Second))
	v1.Put("/sites/production/:id", timeout.NewWithContext(UpdateProductionSiteHandler(deps), 15*time.Second))
	v1.Get("/sites/consumption", timeout.NewWithContext(ListConsumptionSitesHandler(deps), 15*time.Second))
	v1.Post("/sites/consumption", timeout.NewWithContext(CreateConsumptionSiteHandler(deps), 15*time.Second))
	v1.Get("/sites/consumption/:id", timeout.NewWithContext(GetConsumptionSiteHandler(deps), 15*time.Second))
	v1.Put("/sites/consumption/:id", timeout.NewWithContext(UpdateConsumptionSiteHandler(deps), 15*time.Second))
	v1.Delete("/sites/:kind/:id", timeout.NewWithContext(DeleteSiteHandler(deps), 15*time.Second))
	v1.Get("/sites/:kind/:id/readings", timeout.NewWithContext(SiteReadingsHandler(deps), 15*time.Second))

	v1.Get("/pipelines", timeout.NewWithContext(ListPipelinesHandler(deps), 15*time.Second))
	v1.Post("/pipelines", timeout.NewWithContext(CreatePipelineHandler(deps), 15*time.Second))
	v1.Get("/pipelines/:id", timeout.NewWithContext(GetPipelineHandler(deps), 15*time.Second))
	v1.Delete("/pipelines/:id", timeout.NewWithContext(DeletePipelineHandler(deps), 15*time.Second))

	v1.Post("/readings", timeout.NewWithContext(RecordReadingHandler(deps), 15*time.Second))

	v1.Get("/analytics/overview", timeout.NewWithContext(OverviewHandler(deps), 15*time.Second))
	v1.Get("/analytics/sites/:kind/:id", timeout.NewWithContext(SiteAnalyticsHandler(deps), 15*time.Second))

	// Map snapshot and helpers
	v1.Get("/map/entities", timeout.NewWithContext(MapEntitiesHandler(deps), 15*time.Second))
	v1.Post("/map/refresh", timeout.NewWithContext(RefreshHandler(deps), 30*time.Second))
	v1.Get("/map/placement", PlacementPreviewHandler())
	v1.Get("/map/config", timeout.NewWithContext(MapConfigHandler(deps), 15*time.Second))
	v1.Post("/map/config", timeout.NewWithContext(SetMapConfigHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket map sessions
	app.Use("/ws/map", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/map", websocket.New(MapSessionHandler(deps)))
}
