package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/infrastructure/auth"
	"github.com/inventa/backend/internal/infrastructure/cache"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"github.com/inventa/backend/internal/infrastructure/telemetry"
	"github.com/inventa/backend/internal/interfaces/http/dto"
	"github.com/inventa/backend/internal/interfaces/http/handler"
	"github.com/inventa/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig holds the HTTP settings the engine is built from
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	TrustedProxies []string
	IdempotencyTTL time.Duration
}

// Dependencies are the shared services the middleware chain needs
type Dependencies struct {
	Logger   *zap.Logger
	Resolver *auth.ActorResolver
	Meters   *telemetry.MeterProvider
	// Idempotency enables Idempotency-Key replay when set
	Idempotency cache.ResponseStore
}

// Handlers groups the API handlers
type Handlers struct {
	Products *handler.ProductHandler
	Users    *handler.UserHandler
	Audits   *handler.AuditHandler
	Health   *handler.HealthHandler
}

// NewEngine builds the gin engine with the full middleware chain and all routes.
//
// Middleware order:
//  1. RequestID, so every later log line and error body carries it
//  2. Access log, then recovery, so a panic is logged as a 500
//  3. Security headers
//  4. Tracing and span annotation, then metrics, so all see the final status
//  5. Body limit
//  6. Actor resolution from the bearer token
//  7. Idempotency-Key replay, scoped to the actor
func NewEngine(cfg EngineConfig, deps Dependencies, h Handlers) *gin.Engine {
	middleware.SetupValidator()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			deps.Logger.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.AccessLog(deps.Logger, logger.SkipPaths("/health")))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(middleware.AnnotateSpan())
	engine.Use(middleware.HTTPMetrics(deps.Meters))
	engine.Use(middleware.BodyLimit(maxBody))
	engine.Use(middleware.Actor(deps.Resolver, deps.Logger))
	if deps.Idempotency != nil {
		ttl := cfg.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		engine.Use(middleware.Idempotency(deps.Idempotency, ttl, deps.Logger))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}

	NewRouter(engine, WithAPIVersion("v1")).
		Mount(
			ResourceRoutes("catalog", "/products", h.Products),
			ResourceRoutes("identity", "/users", h.Users),
			AuditRoutes(h.Audits),
		).
		Setup()
	deps.Logger.Debug("HTTP routes mounted", zap.Int("count", len(engine.Routes())))

	return engine
}
