package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/greggyneo/homefinder/internal/pkg/metrics"
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
	v1.Get("/meta", timeout.NewWithContext(MetaHandler(deps), 15*time.Second))
	v1.Get("/trends", timeout.NewWithContext(TrendsHandler(deps), 15*time.Second))
	v1.Get("/transactions", timeout.NewWithContext(TransactionsHandler(deps), 15*time.Second))
	v1.Get("/market/stats", timeout.NewWithContext(MarketStatsHandler(deps), 15*time.Second))
	v1.Get("/dataset/status", timeout.NewWithContext(DatasetStatusHandler(deps), 15*time.Second))

	v1.Post("/affordability", timeout.NewWithContext(AffordabilityHandler(deps), 15*time.Second))
	v1.Post("/towns/compare", timeout.NewWithContext(CompareTownsHandler(deps), 15*time.Second))

	v1.Get("/amenities/nearby", timeout.NewWithContext(NearbyAmenitiesHandler(deps), 15*time.Second))
	v1.Get("/amenities/stats", timeout.NewWithContext(AmenityStatsHandler(deps), 15*time.Second))
	v1.Get("/amenities", timeout.NewWithContext(ListAmenitiesHandler(deps), 15*time.Second))
	v1.Post("/amenities/import", timeout.NewWithContext(ImportAmenitiesHandler(deps), 60*time.Second))

	v1.Get("/scenarios", timeout.NewWithContext(ListScenariosHandler(deps), 15*time.Second))
	v1.Post("/scenarios", timeout.NewWithContext(CreateScenarioHandler(deps), 15*time.Second))
	v1.Get("/scenarios/:id", timeout.NewWithContext(GetScenarioHandler(deps), 15*time.Second))
	v1.Delete("/scenarios/:id", timeout.NewWithContext(DeleteScenarioHandler(deps), 15*time.Second))

	// Legacy unversioned paths kept for older dashboard builds; sunset mid-2026.
	sunset := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	legacy := app.Group("/api", DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/api/meta", SunsetDate: sunset, Alternative: "/v1/meta"},
		{Path: "/api/trends", SunsetDate: sunset, Alternative: "/v1/trends"},
		{Path: "/api/transactions", SunsetDate: sunset, Alternative: "/v1/transactions"},
		{Path: "/api/affordability", SunsetDate: sunset, Alternative: "/v1/affordability"},
	}))
	legacy.Get("/meta", MetaHandler(deps))
	legacy.Get("/trends", TrendsHandler(deps))
	legacy.Get("/transactions", TransactionsHandler(deps))
	legacy.Post("/affordability", AffordabilityHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket. The relay is useless without a broker connection, so the
	// route only exists when NATS is up.
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
