package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the schema at dbPath up to date on its own
// connection.
func RunMigrations(dbPath string) error {
	m, closeDB, err := newMigrator(dbPath)
	if err != nil {
		return err
	}
	defer closeDB()
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version.
func SchemaVersion(dbPath string) (uint, bool, error) {
	m, closeDB, err := newMigrator(dbPath)
	if err != nil {
		return 0, false, err
	}
	defer closeDB()
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func newMigrator(dbPath string) (*migrate.Migrate, func(), error) {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open migration database: %w", err)
	}
	closeDB := func() { migrateDB.Close() }

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, closeDB, nil
}
