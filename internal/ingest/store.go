// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/lensatlas/lensatlas/internal/models"
)

// Store is the persistence surface an ingestion run needs. *database.DB
// satisfies it; tests substitute lighter fakes.
type Store interface {
	GetOrCreateBatch(ctx context.Context, batchID string) (*models.Batch, error)
	UpdateBatchProgress(ctx context.Context, batchID string, processed, skipped, failed int64) error
	CompleteBatch(ctx context.Context, batchID string, processed, skipped, failed int64) error
	FailBatch(ctx context.Context, batchID, message string) error

	FindPhotoBySourceURI(ctx context.Context, sourceURI string) (*models.Photo, error)
	InsertPhoto(ctx context.Context, photo *models.Photo) error
	UpdatePhoto(ctx context.Context, id uuid.UUID, photo *models.Photo) error
}
