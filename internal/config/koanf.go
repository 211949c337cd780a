// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lensatlas/config.yaml",
	"/etc/lensatlas/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are applied
// first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8456,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/lensatlas.duckdb",
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Ingest: IngestConfig{
			TakeoutPath:   "",
			Recursive:     true,
			ChunkSize:     20,
			MaxConcurrent: 10,
			OverridePath:  "/data/overrides",
		},
		Events: EventsConfig{
			SubscriberBuffer:  16,
			HeartbeatInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources:
//
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - TAKEOUT_PATH        -> ingest.takeout_path
//   - INGEST_CHUNK_SIZE   -> ingest.chunk_size
//   - DUCKDB_PATH         -> database.path
//   - HTTP_PORT           -> server.port
//   - LOG_LEVEL           -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	// Short aliases kept for operator convenience.
	switch key {
	case "takeout_path":
		return "ingest.takeout_path"
	case "duckdb_path":
		return "database.path"
	case "http_port":
		return "server.port"
	case "http_host":
		return "server.host"
	case "log_level":
		return "logging.level"
	case "log_format":
		return "logging.format"
	case "log_caller":
		return "logging.caller"
	case "cors_origins":
		return "server.cors_origins"
	}

	// Prefixed variables map to their section: INGEST_CHUNK_SIZE,
	// DATABASE_MAX_MEMORY, EVENTS_SUBSCRIBER_BUFFER, SERVER_TIMEOUT...
	for _, section := range []string{"server", "database", "ingest", "events", "logging"} {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}

	// Unknown variables are ignored by returning an empty path.
	return ""
}
