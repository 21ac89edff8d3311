//go:build integration

// Package integration runs the repositories and services against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/inventa/backend/internal/infrastructure/config"
	"github.com/inventa/backend/internal/infrastructure/migration"
	"github.com/inventa/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

const (
	testDBName     = "inventa_test"
	testDBUser     = "postgres"
	testDBPassword = "inventa123"
)

// NewPostgresDB starts a fresh PostgreSQL container, opens it through the
// production database constructor and applies the embedded migrations.
// The container is terminated when the test ends.
func NewPostgresDB(t *testing.T) *persistence.Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         testDBUser,
		Password:     testDBPassword,
		DBName:       testDBName,
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		LogLevel:     "warn",
	}, zaptest.NewLogger(t))
	require.NoError(t, err, "Failed to connect to PostgreSQL")
	t.Cleanup(func() { _ = db.Close() })

	m, err := migration.New(db.SQL(), migration.DriverPostgres, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up(), "Failed to migrate PostgreSQL")

	return db
}
