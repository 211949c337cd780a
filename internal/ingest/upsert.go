// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/lensatlas/lensatlas/internal/logging"
	"github.com/lensatlas/lensatlas/internal/models"
	"github.com/lensatlas/lensatlas/internal/sanitize"
)

// Outcome classifies what an upsert did with one metadata item.
type Outcome int

const (
	// OutcomeCreated means a new photo record was inserted.
	OutcomeCreated Outcome = iota
	// OutcomeUpdated means an existing record was replaced (reprocess mode).
	OutcomeUpdated
	// OutcomeSkipped means a record for the source URI already existed and
	// reprocess was off, so the item was left untouched.
	OutcomeSkipped
	// OutcomeFailed means the item could not be persisted. The error is
	// logged and counted; it never aborts the batch.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// upsertPhoto persists one metadata item keyed by source URI.
//
// Lookup and write are not atomic; the unique constraint on source_uri is
// the backstop if two runs race on the same URI, and the loser surfaces as
// OutcomeFailed.
func upsertPhoto(ctx context.Context, store Store, item *models.MetadataItem, batchID string, reprocess bool) (Outcome, error) {
	existing, err := store.FindPhotoBySourceURI(ctx, item.SourceURI)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("lookup %s: %w", item.SourceURI, err)
	}

	if existing != nil && !reprocess {
		return OutcomeSkipped, nil
	}

	photo := buildPhoto(item, batchID)

	if existing != nil {
		photo.ID = existing.ID
		photo.CreatedAt = existing.CreatedAt
		if err := store.UpdatePhoto(ctx, existing.ID, photo); err != nil {
			return OutcomeFailed, fmt.Errorf("update %s: %w", item.SourceURI, err)
		}
		return OutcomeUpdated, nil
	}

	if err := store.InsertPhoto(ctx, photo); err != nil {
		return OutcomeFailed, fmt.Errorf("insert %s: %w", item.SourceURI, err)
	}
	return OutcomeCreated, nil
}

// buildPhoto maps a pipeline item to its persisted form. Raw metadata is
// sanitized one final time so nothing NUL-tainted or non-UTF-8 reaches the
// JSON column even if an extractor path missed it.
func buildPhoto(item *models.MetadataItem, batchID string) *models.Photo {
	raw := map[string]interface{}{}
	if len(item.Exif) > 0 {
		raw["exif"] = item.Exif
	}
	if len(item.Sidecar) > 0 {
		raw["sidecar"] = item.Sidecar
	}

	var taken *time.Time
	if item.TakenAt != nil {
		t := item.TakenAt.UTC()
		taken = &t
	}

	bid := batchID
	return &models.Photo{
		SourceURI:   item.SourceURI,
		Filename:    item.Filename,
		FileSize:    item.FileSize,
		MimeType:    item.MimeType,
		TakenAt:     taken,
		RawMetadata: sanitize.DeepMap(raw),
		BatchID:     &bid,
	}
}

func logOutcome(uri string, outcome Outcome, err error) {
	switch outcome {
	case OutcomeFailed:
		logging.Warn().Err(err).Str("source_uri", uri).Msg("Photo upsert failed")
	default:
		logging.Debug().Str("source_uri", uri).Str("outcome", outcome.String()).Msg("Photo upserted")
	}
}
