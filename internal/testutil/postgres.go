// Package testutil starts disposable infrastructure for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/fibradoc/fibradoc/internal/dbutil"
	"github.com/fibradoc/fibradoc/migrations"
)

const postgresImage = "postgres:16-alpine"

// NewTestPostgres starts a PostgreSQL container, applies the embedded
// migrations and returns an open pool. Container and pool are released when
// the test finishes.
func NewTestPostgres(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("fibradoc"),
		postgres.WithUsername("fibradoc"),
		postgres.WithPassword("fibradoc"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := dbutil.Connect(ctx, dbutil.PoolConfig{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = dbutil.RunMigrations(db, migrations.FS, migrations.Dir)
	require.NoError(t, err)

	return db
}
