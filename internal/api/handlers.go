// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lensatlas/lensatlas/internal/config"
	"github.com/lensatlas/lensatlas/internal/ingest"
	"github.com/lensatlas/lensatlas/internal/models"
)

// Runner executes ingestion batches. Satisfied by *ingest.Orchestrator.
type Runner interface {
	Run(ctx context.Context, opts ingest.RunOptions) (*ingest.RunStats, error)
}

// StatusStore is the read side the API needs from the database.
type StatusStore interface {
	GetBatch(ctx context.Context, batchID string) (*models.Batch, error)
	ListBatches(ctx context.Context, limit int) ([]models.Batch, error)
	CountPhotos(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	runner    Runner
	store     StatusStore
	overrides ingest.OverrideStore
	cfg       *config.Config
	validate  *validator.Validate
	startedAt time.Time
}

// NewHandler wires the HTTP handlers.
func NewHandler(runner Runner, store StatusStore, overrides ingest.OverrideStore, cfg *config.Config) *Handler {
	return &Handler{
		runner:    runner,
		store:     store,
		overrides: overrides,
		cfg:       cfg,
		validate:  validator.New(),
		startedAt: time.Now().UTC(),
	}
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
