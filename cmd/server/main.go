// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package main is the entry point for the LensAtlas server.
//
// LensAtlas ingests photo export archives (e.g. Google Takeout ZIPs),
// extracts and sanitizes EXIF and sidecar metadata, and persists one record
// per photo in an embedded DuckDB database. Ingestion runs are tracked as
// batches and their progress is streamed to clients over WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, YAML file, and
//     environment variables (Koanf v2)
//  2. Database: embedded DuckDB holding photos and ingestion batches
//  3. Override store: BadgerDB-backed runtime ingestion overrides
//  4. Event broadcaster: in-process progress fan-out
//  5. Ingestion orchestrator: chunked, concurrency-bounded batch runs
//  6. HTTP server: REST API, Prometheus metrics, and WebSocket feed
//
// # Configuration
//
// Key environment variables:
//   - TAKEOUT_PATH: default root directory scanned for ZIP archives
//   - DUCKDB_PATH: database file (default /data/lensatlas.duckdb)
//   - HTTP_PORT: listen port (default 8456)
//   - LOG_LEVEL: zerolog level (default info)
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, waits up to 10s for in-flight requests, then
// closes the broadcaster, override store, and database.
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

	"github.com/lensatlas/lensatlas/internal/api"
	"github.com/lensatlas/lensatlas/internal/config"
	"github.com/lensatlas/lensatlas/internal/database"
	"github.com/lensatlas/lensatlas/internal/events"
	"github.com/lensatlas/lensatlas/internal/ingest"
	"github.com/lensatlas/lensatlas/internal/logging"
	ws "github.com/lensatlas/lensatlas/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("takeout_path", cfg.Ingest.TakeoutPath).
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting LensAtlas")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	overrides, err := ingest.NewOverrideStore(cfg.Ingest.OverridePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open override store")
	}
	defer func() {
		if err := overrides.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing override store")
		}
	}()

	broadcaster := events.NewBroadcaster(cfg.Events.SubscriberBuffer)
	defer broadcaster.Close()

	orchestrator := ingest.NewOrchestrator(db, broadcaster, &cfg.Ingest)

	handler := api.NewHandler(orchestrator, db, overrides, cfg)
	wsHandler := ws.NewHandler(broadcaster, cfg.Events.HeartbeatInterval)
	router := api.NewRouter(handler, wsHandler, &cfg.Server)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}
	logging.Info().Msg("LensAtlas stopped")
}
