// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8456 {
		t.Errorf("Server.Port = %d, want 8456", cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 20 {
		t.Errorf("Ingest.ChunkSize = %d, want 20", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.MaxConcurrent != 10 {
		t.Errorf("Ingest.MaxConcurrent = %d, want 10", cfg.Ingest.MaxConcurrent)
	}
	if !cfg.Ingest.Recursive {
		t.Error("Ingest.Recursive should default to true")
	}
	if cfg.Events.SubscriberBuffer != 16 {
		t.Errorf("Events.SubscriberBuffer = %d, want 16", cfg.Events.SubscriberBuffer)
	}
	if cfg.Events.HeartbeatInterval != 30*time.Second {
		t.Errorf("Events.HeartbeatInterval = %s, want 30s", cfg.Events.HeartbeatInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TAKEOUT_PATH", "/mnt/takeout")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("INGEST_CHUNK_SIZE", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Ingest.TakeoutPath != "/mnt/takeout" {
		t.Errorf("Ingest.TakeoutPath = %q, want /mnt/takeout", cfg.Ingest.TakeoutPath)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 5 {
		t.Errorf("Ingest.ChunkSize = %d, want 5", cfg.Ingest.ChunkSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7777\ningest:\n  takeout_path: /srv/photos\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Ingest.TakeoutPath != "/srv/photos" {
		t.Errorf("Ingest.TakeoutPath = %q, want /srv/photos", cfg.Ingest.TakeoutPath)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7777\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8888")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want env override 8888", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"zero chunk size", func(c *Config) { c.Ingest.ChunkSize = 0 }},
		{"zero max concurrent", func(c *Config) { c.Ingest.MaxConcurrent = 0 }},
		{"zero subscriber buffer", func(c *Config) { c.Events.SubscriberBuffer = 0 }},
		{"negative db threads", func(c *Config) { c.Database.Threads = -1 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
