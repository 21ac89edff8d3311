// Package persistence implements the domain repositories and the transaction
// scope on top of GORM, for PostgreSQL in production and SQLite elsewhere.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inventa/backend/internal/infrastructure/config"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SlowQueryThreshold is the duration after which queries are logged as slow
const SlowQueryThreshold = 200 * time.Millisecond

const connectTimeout = 5 * time.Second

// Database is an open GORM connection together with its pool
type Database struct {
	DB     *gorm.DB
	Driver string
	pool   *sql.DB
}

// PoolStats is the subset of sql.DBStats reported by the health endpoint
type PoolStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

// NewDatabase opens the database selected by cfg.Driver, sizes the pool and
// checks the connection. SQL is logged through log at cfg.LogLevel.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.LogLevel),
			logger.WithSlowThreshold(SlowQueryThreshold),
			logger.WithExpectedErrors(isUniqueViolation),
		),
		// mutations run inside an explicit TransactionScope
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver == config.DriverPostgres,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d, err := FromGorm(db, cfg.Driver)
	if err != nil {
		return nil, err
	}
	sizePool(d.pool, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := d.Ping(ctx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

// FromGorm wraps an already opened connection, such as one over sqlmock
func FromGorm(db *gorm.DB, driver string) (*Database, error) {
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Database{DB: db, Driver: driver, pool: pool}, nil
}

func sizePool(pool *sql.DB, cfg *config.DatabaseConfig) {
	open, idle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if cfg.Driver == config.DriverSQLite {
		// one writer at a time; an in-memory database also dies with its last connection
		open, idle = 1, 1
	}
	pool.SetMaxOpenConns(open)
	pool.SetMaxIdleConns(idle)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// SQL returns the pooled handle, e.g. for running migrations on it
func (d *Database) SQL() *sql.DB {
	return d.pool
}

// Ping checks that a connection can be obtained and is alive
func (d *Database) Ping(ctx context.Context) error {
	return d.pool.PingContext(ctx)
}

// Pool reports connection pool usage
func (d *Database) Pool() PoolStats {
	s := d.pool.Stats()
	return PoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}
}

// Close closes every pooled connection
func (d *Database) Close() error {
	return d.pool.Close()
}
