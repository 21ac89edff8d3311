// Package migration applies the embedded SQL schema with golang-migrate.
// Each dialect has its own directory of numbered up/down files.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var embedded embed.FS

// Migrator applies the embedded schema migrations using golang-migrate
type Migrator struct {
	migrate *migrate.Migrate
	log     *zap.Logger
}

// New creates a Migrator for an open database handle.
// Closing the Migrator also closes db.
func New(db *sql.DB, driver string, log *zap.Logger) (*Migrator, error) {
	src, err := openSource(driver)
	if err != nil {
		return nil, err
	}

	var target database.Driver
	if driver == DriverPostgres {
		target, err = postgres.WithInstance(db, &postgres.Config{})
	} else {
		target, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return newMigrator(m, driver, log), nil
}

// NewFromURL creates a Migrator that opens its own connection from a
// golang-migrate database URL (postgres://... or sqlite3://...)
func NewFromURL(databaseURL, driver string, log *zap.Logger) (*Migrator, error) {
	src, err := openSource(driver)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return newMigrator(m, driver, log), nil
}

func newMigrator(m *migrate.Migrate, driver string, log *zap.Logger) *Migrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{migrate: m, log: log.Named("migrate").With(zap.String("driver", driver))}
}

func openSource(driver string) (source.Driver, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
	src, err := iofs.New(embedded, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return src, nil
}

// apply runs one golang-migrate operation. Nothing to do is not an error.
func (m *Migrator) apply(op string, run func() error) error {
	m.log.Info("Migrating", zap.String("op", op))
	if err := run(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("Schema already up to date", zap.String("op", op))
			return nil
		}
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.log.Info("Migration finished",
		zap.String("op", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	return m.apply("up", m.migrate.Up)
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	return m.apply("down", m.migrate.Down)
}

// Steps applies n migrations (positive = up, negative = down)
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps %+d", n), func() error { return m.migrate.Steps(n) })
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	return m.apply(fmt.Sprintf("goto %d", version), func() error { return m.migrate.Migrate(version) })
}

// Version returns the current migration version. A database with no
// applied migrations reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything, clearing the
// dirty flag a failed migration leaves behind.
func (m *Migrator) Force(version int) error {
	m.log.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close closes the migrator and the underlying database handle
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// Info describes one embedded migration
type Info struct {
	Version uint
	Name    string
}

// List returns the embedded migrations for a driver ordered by version
func List(driver string) ([]Info, error) {
	src, err := openSource(driver)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var infos []Info
	version, err := src.First()
	for err == nil {
		body, ident, readErr := src.ReadUp(version)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read migration %d: %w", version, readErr)
		}
		_ = body.Close()
		infos = append(infos, Info{Version: version, Name: ident})
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	return infos, nil
}
