// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package config

import (
	"fmt"
)

// Validate checks the configuration for invalid values. It is called by Load
// after all sources are merged, so it sees the effective configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in range 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("server.rate_limit_reqs must be at least 1, got %d", c.Server.RateLimitReqs)
	}

	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must not be negative, got %d", c.Database.Threads)
	}

	if c.Ingest.ChunkSize < 1 {
		return fmt.Errorf("ingest.chunk_size must be at least 1, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.MaxConcurrent < 1 {
		return fmt.Errorf("ingest.max_concurrent must be at least 1, got %d", c.Ingest.MaxConcurrent)
	}

	if c.Events.SubscriberBuffer < 1 {
		return fmt.Errorf("events.subscriber_buffer must be at least 1, got %d", c.Events.SubscriberBuffer)
	}
	if c.Events.HeartbeatInterval <= 0 {
		return fmt.Errorf("events.heartbeat_interval must be positive, got %s", c.Events.HeartbeatInterval)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
