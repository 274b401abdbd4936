package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// Connect opens a pool for the given driver and verifies it with a ping.
func Connect(driver, dsn string, timeout time.Duration) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = ensureForeignKeysEnabledDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY between pool members.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close database handle after ping error")
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// NewMigrator builds a migrate instance over the embedded migrations of driver.
func NewMigrator(db *sql.DB, driver string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migration source: %w", err)
	}

	var m *migrate.Migrate
	switch driver {
	case DriverPostgres:
		instance, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
		if err != nil {
			return nil, fmt.Errorf("could not create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, driver, instance)
		if err != nil {
			return nil, fmt.Errorf("could not create migrate instance: %w", err)
		}
	case DriverSQLite:
		instance, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("could not create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, driver, instance)
		if err != nil {
			return nil, fmt.Errorf("could not create migrate instance: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
	return m, nil
}

// Migrate applies all pending up migrations. No change is not an error.
func Migrate(db *sql.DB, driver string) error {
	m, err := NewMigrator(db, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// ensureForeignKeysEnabledDSN adds `_fk=1` so SQLite enforces foreign keys.
func ensureForeignKeysEnabledDSN(dsn string) string {
	if strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_fk=1"
	}
	return dsn + "?_fk=1"
}
