// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package api

import (
	"net/http"
	"time"

	"github.com/lensatlas/lensatlas/internal/logging"
)

// Health handles GET /api/v1/health with a database check and basic counts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := contextWithTimeout(r, 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.Error().Err(err).Msg("health check: database unreachable")
		rw.ServiceUnavailable("database unreachable")
		return
	}

	photos, err := h.store.CountPhotos(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("health check: count query failed")
		rw.ServiceUnavailable("database query failed")
		return
	}

	rw.Success(map[string]interface{}{
		"status":         "ok",
		"photos":         photos,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// HealthLive handles GET /api/v1/health/live. It answers as long as the
// process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Ready means the database
// answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := contextWithTimeout(r, 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		rw.ServiceUnavailable("database unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
