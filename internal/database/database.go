// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package database implements the metadata store on DuckDB.
//
// It persists ingestion batches and photo records and is the single
// implementation of the ingest.Store interface consumed by the orchestrator.
// Each exported operation is transactional with respect to the single record
// it touches.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/lensatlas/lensatlas/internal/config"
	"github.com/lensatlas/lensatlas/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New creates a new database connection and initializes the schema.
// An empty cfg.Path opens an in-memory database.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "2GB"
	}

	// Ensure the parent directory exists for file-backed databases.
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301.
	if cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("database initialized")
	return db, nil
}

// initialize creates the schema if it does not exist.
func (db *DB) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS ingest_batches (
			batch_id        VARCHAR PRIMARY KEY,
			status          VARCHAR NOT NULL,
			started_at      TIMESTAMP NOT NULL,
			completed_at    TIMESTAMP,
			total_files     BIGINT,
			processed_files BIGINT NOT NULL DEFAULT 0,
			skipped_files   BIGINT NOT NULL DEFAULT 0,
			failed_files    BIGINT NOT NULL DEFAULT 0,
			error_message   VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS photos (
			id           VARCHAR PRIMARY KEY,
			source_uri   VARCHAR NOT NULL UNIQUE,
			filename     VARCHAR NOT NULL,
			file_size    BIGINT,
			mime_type    VARCHAR,
			taken_at     TIMESTAMP,
			raw_metadata JSON,
			batch_id     VARCHAR,
			created_at   TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_photos_batch_id ON photos(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_photos_taken_at ON photos(taken_at)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_started_at ON ingest_batches(started_at)`,
	}

	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("error closing database connection")
	}
}
