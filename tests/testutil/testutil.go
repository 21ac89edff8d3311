// Package testutil provides common test utilities for the inventa backend.
// It sets up in-memory databases, sqlmock-backed GORM handles and HTTP helpers.
package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/infrastructure/config"
	"github.com/inventa/backend/internal/infrastructure/migration"
	"github.com/inventa/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens a private in-memory sqlite database with the schema migrated.
// The database is closed when the test ends.
func NewSQLiteDB(t *testing.T) *persistence.Database {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     ":memory:",
		LogLevel: "silent",
	}, nil)
	require.NoError(t, err, "Failed to open sqlite database")

	// The migrator is not closed: closing it would close the shared handle.
	m, err := migration.New(db.SQL(), migration.DriverSQLite, nil)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to migrate sqlite database")

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// MockDB is a postgres-dialect Database whose SQL is scripted with sqlmock
type MockDB struct {
	*persistence.Database
	Mock sqlmock.Sqlmock
}

// NewMockDB opens a MockDB. Unmet expectations fail the test at cleanup;
// queries are matched as regular expressions.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "Failed to create sqlmock")

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err, "Failed to open GORM over sqlmock")

	db, err := persistence.FromGorm(gdb, config.DriverPostgres)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unmet database expectations")
		_ = conn.Close()
	})
	return &MockDB{Database: db, Mock: mock}
}

// Uint64Ptr returns a pointer to v
func Uint64Ptr(v uint64) *uint64 {
	return &v
}
