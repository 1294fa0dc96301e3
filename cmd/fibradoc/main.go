// Package main is the entry point for the FibraDoc service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fibradoc/fibradoc/api"
	"github.com/fibradoc/fibradoc/internal/audit"
	"github.com/fibradoc/fibradoc/internal/config"
	"github.com/fibradoc/fibradoc/internal/dbutil"
	"github.com/fibradoc/fibradoc/internal/events"
	"github.com/fibradoc/fibradoc/internal/server"
	"github.com/fibradoc/fibradoc/internal/store"
	"github.com/fibradoc/fibradoc/internal/telemetry"
	"github.com/fibradoc/fibradoc/migrations"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.DevMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "fibradoc").Str("version", version).Logger()
	}

	logger := log.With().Str("component", "main").Logger()
	logger.Info().Str("version", version).Str("commit", commit).Str("build_date", buildDate).Msg("starting fibradoc")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := dbutil.Connect(ctx, dbutil.PoolConfig{
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Msg("connected to PostgreSQL")

	if cfg.AutoMigrate {
		result, migrateErr := dbutil.RunMigrations(db, migrations.FS, migrations.Dir)
		if migrateErr != nil {
			logger.Fatal().Err(migrateErr).Msg("failed to run database migrations")
		}
		logger.Info().Uint("version", result.Version).Bool("dirty", result.Dirty).Msg("database migration complete")
	}

	opts := []server.Option{server.WithOpenAPISpec(api.OpenAPISpec)}

	if cfg.NATSURL != "" {
		publisher, pubErr := events.NewNATSPublisher(events.NATSConfig{
			URL:    cfg.NATSURL,
			Name:   "fibradoc-" + version,
			Stream: cfg.NATSStream,
		})
		if pubErr != nil {
			logger.Fatal().Err(pubErr).Msg("failed to connect to NATS")
		}
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to drain NATS connection")
			}
		}()
		opts = append(opts, server.WithPublisher(publisher))
		logger.Info().Str("stream", cfg.NATSStream).Msg("publishing write events to NATS")
	}

	if cfg.AuditEnabled {
		opts = append(opts, server.WithAuditLogger(audit.NewLogger(log.Logger)))
	}

	if cfg.MetricsEnabled {
		metrics, metricsErr := telemetry.NewMetrics("fibradoc")
		if metricsErr != nil {
			logger.Fatal().Err(metricsErr).Msg("failed to register metrics")
		}
		opts = append(opts, server.WithMetrics(metrics))
	}

	st := store.NewPostgresStore(db)
	srv := server.New(st, cfg, version, commit, buildDate, opts...)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case serveErr := <-errCh:
		logger.Error().Err(serveErr).Msg("HTTP server error")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
	}
	logger.Info().Msg("server stopped gracefully")
}
