package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"FIBRADOC_LISTEN_ADDR",
	"FIBRADOC_DB_DSN",
	"FIBRADOC_LOG_LEVEL",
	"FIBRADOC_NATS_URL",
	"FIBRADOC_NATS_STREAM",
	"FIBRADOC_DEV_MODE",
	"FIBRADOC_METRICS_ENABLED",
	"FIBRADOC_TRACES_ENABLED",
	"FIBRADOC_AUDIT_ENABLED",
	"FIBRADOC_AUTO_MIGRATE",
	"FIBRADOC_DB_MAX_OPEN_CONNS",
	"FIBRADOC_DB_MAX_IDLE_CONNS",
	"FIBRADOC_DB_CONN_MAX_LIFETIME",
	"FIBRADOC_DEFAULT_PAGE_SIZE",
	"FIBRADOC_MAX_PAGE_SIZE",
	"FIBRADOC_SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, defaultDSN, cfg.DBDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, defaultNATSStream, cfg.NATSStream)
	assert.False(t, cfg.DevMode)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TracesEnabled)
	assert.True(t, cfg.AuditEnabled)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, defaultMaxOpenConns, cfg.DBMaxOpenConns)
	assert.Equal(t, defaultMaxIdleConns, cfg.DBMaxIdleConns)
	assert.Equal(t, defaultConnMaxLifetime, cfg.DBConnMaxLifetime)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIBRADOC_LISTEN_ADDR", ":9999")
	t.Setenv("FIBRADOC_DB_DSN", "postgres://example")
	t.Setenv("FIBRADOC_LOG_LEVEL", "DEBUG")
	t.Setenv("FIBRADOC_NATS_URL", " nats://nats:4222 ")
	t.Setenv("FIBRADOC_NATS_STREAM", " PLANT ")
	t.Setenv("FIBRADOC_DEV_MODE", "yes")
	t.Setenv("FIBRADOC_METRICS_ENABLED", "off")
	t.Setenv("FIBRADOC_AUDIT_ENABLED", "false")
	t.Setenv("FIBRADOC_DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("FIBRADOC_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "postgres://example", cfg.DBDSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "nats://nats:4222", cfg.NATSURL)
	assert.Equal(t, "PLANT", cfg.NATSStream)
	assert.True(t, cfg.DevMode)
	assert.False(t, cfg.MetricsEnabled)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, 90*time.Second, cfg.DBConnMaxLifetime)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidOrZeroUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIBRADOC_NATS_STREAM", " ")
	t.Setenv("FIBRADOC_DEV_MODE", "maybe")
	t.Setenv("FIBRADOC_DB_MAX_OPEN_CONNS", "0")
	t.Setenv("FIBRADOC_DB_MAX_IDLE_CONNS", "-3")
	t.Setenv("FIBRADOC_DB_CONN_MAX_LIFETIME", "forever")
	t.Setenv("FIBRADOC_DEFAULT_PAGE_SIZE", "abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultNATSStream, cfg.NATSStream)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, defaultMaxOpenConns, cfg.DBMaxOpenConns)
	assert.Equal(t, defaultMaxIdleConns, cfg.DBMaxIdleConns)
	assert.Equal(t, defaultConnMaxLifetime, cfg.DBConnMaxLifetime)
	assert.Equal(t, defaultPageSize, cfg.DefaultPageSize)
}

func TestLoad_Normalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIBRADOC_DB_MAX_OPEN_CONNS", "4")
	t.Setenv("FIBRADOC_DB_MAX_IDLE_CONNS", "10")
	t.Setenv("FIBRADOC_DEFAULT_PAGE_SIZE", "50")
	t.Setenv("FIBRADOC_MAX_PAGE_SIZE", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.DBMaxIdleConns)
	assert.Equal(t, 20, cfg.DefaultPageSize)
}

func TestLoad_BlankDSNFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIBRADOC_DB_DSN", "   ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIBRADOC_DB_DSN")
}
