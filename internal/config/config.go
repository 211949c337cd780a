// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package config provides layered configuration for LensAtlas using Koanf v2.
//
// Configuration sources, highest priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (TAKEOUT_PATH, HTTP_PORT, LOG_LEVEL, ...)
package config

import (
	"time"
)

// Config is the root configuration for the LensAtlas server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed CORS origins for the API and WebSocket.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs and RateLimitWindow bound ingestion trigger requests.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty string opens an in-memory
	// database (used in tests).
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	// TakeoutPath is the default root directory scanned for ZIP containers.
	// A request value or a stored runtime override takes precedence.
	TakeoutPath string `koanf:"takeout_path"`

	// Recursive controls whether container discovery descends into
	// subdirectories of the takeout path.
	Recursive bool `koanf:"recursive"`

	// ChunkSize is the number of metadata items accumulated before a
	// concurrent persistence dispatch and a progress update.
	ChunkSize int `koanf:"chunk_size"`

	// MaxConcurrent bounds in-flight persistence operations per chunk.
	MaxConcurrent int `koanf:"max_concurrent"`

	// OverridePath is the BadgerDB directory persisting runtime ingest
	// defaults (path/limit/reprocess set via the API). Empty disables
	// persistence and overrides are held in memory only.
	OverridePath string `koanf:"override_path"`
}

// EventsConfig holds progress event fan-out settings.
type EventsConfig struct {
	// SubscriberBuffer is each subscriber's channel capacity. A subscriber
	// whose channel is full at broadcast time is dropped.
	SubscriberBuffer int `koanf:"subscriber_buffer"`

	// HeartbeatInterval is how often the WebSocket transport emits an idle
	// heartbeat when no progress event arrives.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
