// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/lensatlas/lensatlas/internal/ingest"
	"github.com/lensatlas/lensatlas/internal/logging"
)

const (
	defaultStatusLimit = 20
	maxStatusLimit     = 200
)

// checkTakeoutRoot verifies that a takeout path exists and is a directory
// before anything is queued against it.
func checkTakeoutRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("takeout path %q does not exist", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("takeout path %q is not a directory", path)
	}
	return nil
}

// IngestStart handles POST /api/v1/ingest/start. It resolves run options
// from the request body, stored overrides, and static configuration, then
// launches the run in the background and answers 202 immediately.
func (h *Handler) IngestStart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req IngestStartRequest
	if err := decodeJSON(w, r, h.validate, &req, true); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ov, err := h.overrides.Load(r.Context())
	if err != nil {
		logging.Warn().Err(err).Msg("failed to load ingest overrides, using config defaults")
	}

	opts := ingest.ResolveOptions(ingest.RequestOptions{
		TakeoutPath: req.TakeoutPath,
		BatchID:     req.BatchID,
		Limit:       req.Limit,
		Reprocess:   req.Reprocess,
	}, ov, &h.cfg.Ingest)
	if opts.BatchID == "" {
		opts.BatchID = ingest.NewBatchID()
	}
	if err := checkTakeoutRoot(opts.Root); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	// The run outlives the request; its lifetime is the process's.
	go func() {
		if _, err := h.runner.Run(context.Background(), opts); err != nil {
			logging.Error().Err(err).Str("batch_id", opts.BatchID).Msg("background ingestion run failed")
		}
	}()

	rw.Accepted(map[string]interface{}{
		"batch_id": opts.BatchID,
		"status":   "started",
	})
}

// IngestStatus handles GET /api/v1/ingest/status. With ?batch_id= it returns
// that batch; otherwise the most recent batches (?limit=, default 20).
func (h *Handler) IngestStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if batchID := r.URL.Query().Get("batch_id"); batchID != "" {
		batch, err := h.store.GetBatch(r.Context(), batchID)
		if err != nil {
			logging.Error().Err(err).Str("batch_id", batchID).Msg("failed to query batch")
			rw.InternalError("failed to query batch")
			return
		}
		if batch == nil {
			rw.NotFound("batch not found")
			return
		}
		rw.Success(batch)
		return
	}

	limit := defaultStatusLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxStatusLimit {
			rw.BadRequest("limit must be an integer between 1 and 200")
			return
		}
		limit = parsed
	}

	batches, err := h.store.ListBatches(r.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Msg("failed to list batches")
		rw.InternalError("failed to list batches")
		return
	}
	rw.Success(map[string]interface{}{
		"batches": batches,
		"count":   len(batches),
	})
}

// IngestConfigGet handles GET /api/v1/ingest/config: the effective defaults
// for the next run, with the stored overrides applied.
func (h *Handler) IngestConfigGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ov, err := h.overrides.Load(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("failed to load ingest overrides")
		rw.InternalError("failed to load overrides")
		return
	}

	source := "unset"
	switch {
	case ov != nil && ov.TakeoutPath != "":
		source = "override"
	case h.cfg.Ingest.TakeoutPath != "":
		source = "config"
	}

	effective := ingest.ResolveOptions(ingest.RequestOptions{}, ov, &h.cfg.Ingest)
	rw.Success(map[string]interface{}{
		"takeout_path": effective.Root,
		"source":       source,
		"limit":        effective.Limit,
		"reprocess":    effective.Reprocess,
		"recursive":    effective.Recursive,
		"overridden":   ov != nil,
	})
}

// IngestConfigPut handles PUT /api/v1/ingest/config, replacing the stored
// overrides.
func (h *Handler) IngestConfigPut(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req OverridesRequest
	if err := decodeJSON(w, r, h.validate, &req, false); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if req.TakeoutPath != "" {
		if err := checkTakeoutRoot(req.TakeoutPath); err != nil {
			rw.BadRequest(err.Error())
			return
		}
	}

	ov := &ingest.Overrides{
		TakeoutPath: req.TakeoutPath,
		Limit:       req.Limit,
		Reprocess:   req.Reprocess,
	}
	if err := h.overrides.Save(r.Context(), ov); err != nil {
		logging.Error().Err(err).Msg("failed to save ingest overrides")
		rw.InternalError("failed to save overrides")
		return
	}

	logging.Info().
		Str("takeout_path", ov.TakeoutPath).
		Msg("Ingest overrides updated")
	rw.Success(ov)
}

// IngestConfigDelete handles DELETE /api/v1/ingest/config, reverting to the
// static configuration.
func (h *Handler) IngestConfigDelete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.overrides.Clear(r.Context()); err != nil {
		logging.Error().Err(err).Msg("failed to clear ingest overrides")
		rw.InternalError("failed to clear overrides")
		return
	}
	rw.NoContent()
}
