package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	appaudit "github.com/inventa/backend/internal/application/audit"
	catalogapp "github.com/inventa/backend/internal/application/catalog"
	identityapp "github.com/inventa/backend/internal/application/identity"
	"github.com/inventa/backend/internal/infrastructure/auth"
	"github.com/inventa/backend/internal/infrastructure/cache"
	"github.com/inventa/backend/internal/infrastructure/config"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"github.com/inventa/backend/internal/infrastructure/migration"
	"github.com/inventa/backend/internal/infrastructure/persistence"
	"github.com/inventa/backend/internal/infrastructure/telemetry"
	"github.com/inventa/backend/internal/interfaces/http/handler"
	"github.com/inventa/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry. Disabled pipelines are no-ops.
	tel, err := telemetry.Setup(ctx, telemetry.Settings{
		ServiceName:     cfg.Telemetry.ServiceName,
		Endpoint:        cfg.Telemetry.CollectorEndpoint,
		Insecure:        cfg.Telemetry.Insecure,
		TracesEnabled:   cfg.Telemetry.Enabled,
		SamplingRatio:   cfg.Telemetry.SamplingRatio,
		MetricsEnabled:  cfg.Telemetry.MetricsEnabled,
		MetricsInterval: cfg.Telemetry.MetricsExportInterval,
		LogsEnabled:     cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = tel.Logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting inventa backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Audit trail
	auditMetrics, err := telemetry.NewAuditMetrics(tel.Metrics)
	if err != nil {
		log.Warn("Audit metrics disabled", zap.Error(err))
	}
	recorder := appaudit.NewRecorder(
		persistence.NewGormTransactionScope(db.DB),
		log,
		appaudit.WithMetrics(auditMetrics),
	)
	auditQueries := appaudit.NewQueryService(persistence.NewGormAuditRepository(db.DB), log)

	// Services
	productService := catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB), recorder, auditQueries)
	userService := identityapp.NewUserService(persistence.NewGormUserRepository(db.DB), recorder, auditQueries)

	// Idempotency-Key replay. In production a configured Redis must be reachable.
	var idempotencyStore cache.ResponseStore
	if cfg.Idempotency.Enabled {
		idempotencyStore, err = cache.NewStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		).Create(cfg.Idempotency.Backend)
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
		defer func() {
			if err := idempotencyStore.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(
		router.EngineConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			TracingEnabled: tel.Traces.IsEnabled(),
			MaxBodySize:    cfg.HTTP.MaxBodySize,
			TrustedProxies: cfg.HTTP.TrustedProxies,
			IdempotencyTTL: cfg.Idempotency.TTL,
		},
		router.Dependencies{
			Logger:      log,
			Resolver:    auth.NewActorResolver(cfg.JWT),
			Meters:      tel.Metrics,
			Idempotency: idempotencyStore,
		},
		router.Handlers{
			Products: handler.NewProductHandler(productService),
			Users:    handler.NewUserHandler(userService),
			Audits:   handler.NewAuditHandler(auditQueries),
			Health:   handler.NewHealthHandler(db),
		},
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrate applies pending migrations on the open connection
func migrate(db *persistence.Database, log *zap.Logger) error {
	driver := migration.DriverPostgres
	if db.Driver == config.DriverSQLite {
		driver = migration.DriverSQLite
	}
	// The migrator shares the handle; closing it would close the pool.
	m, err := migration.New(db.SQL(), driver, log)
	if err != nil {
		return err
	}
	return m.Up()
}
