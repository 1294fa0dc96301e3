// Package dbutil opens the PostgreSQL pool and applies embedded migrations.
package dbutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Registers the "postgres" database/sql driver.
	_ "github.com/lib/pq"
)

const defaultPingTimeout = 5 * time.Second

// PoolConfig configures the connection pool.
type PoolConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MigrationResult reports the schema version after migrating.
type MigrationResult struct {
	Version uint
	Dirty   bool
}

// Connect opens a PostgreSQL pool and verifies connectivity.
func Connect(ctx context.Context, cfg PoolConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("dbutil: DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// RunMigrations applies every pending up-migration found in dir of fsys.
// The database handle stays open; migrate's Close is not called because the
// postgres driver would close db with it.
func RunMigrations(db *sql.DB, fsys fs.FS, dir string) (MigrationResult, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("reading migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationResult{}, fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return MigrationResult{}, nil
		}
		return MigrationResult{}, fmt.Errorf("reading migration version: %w", err)
	}

	return MigrationResult{Version: version, Dirty: dirty}, nil
}
