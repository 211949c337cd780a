// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/lensatlas/lensatlas/internal/metrics"
	"github.com/lensatlas/lensatlas/internal/models"
)

// FindPhotoBySourceURI looks up a photo by its idempotency key. Returns
// nil, nil when no record exists.
func (db *DB) FindPhotoBySourceURI(ctx context.Context, sourceURI string) (*models.Photo, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, source_uri, filename, file_size, mime_type, taken_at,
		        CAST(raw_metadata AS VARCHAR), batch_id, created_at
		 FROM photos WHERE source_uri = ?`, sourceURI)

	photo, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("SELECT", "photos", time.Since(start), nil)
		return nil, nil
	}
	metrics.RecordDBQuery("SELECT", "photos", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query photo %s: %w", sourceURI, err)
	}
	return photo, nil
}

// InsertPhoto inserts a new photo record. A zero ID and CreatedAt are filled in.
func (db *DB) InsertPhoto(ctx context.Context, photo *models.Photo) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}

	rawJSON, err := json.Marshal(photo.RawMetadata)
	if err != nil {
		return fmt.Errorf("marshal raw metadata for %s: %w", photo.SourceURI, err)
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO photos (id, source_uri, filename, file_size, mime_type,
		                     taken_at, raw_metadata, batch_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		photo.ID.String(), photo.SourceURI, photo.Filename, photo.FileSize,
		photo.MimeType, nullableTime(photo.TakenAt), string(rawJSON),
		nullableString(photo.BatchID), photo.CreatedAt)
	metrics.RecordDBQuery("INSERT", "photos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert photo %s: %w", photo.SourceURI, err)
	}
	return nil
}

// UpdatePhoto fully replaces the mutable fields of an existing photo record
// (reprocess mode). The source URI and surrogate ID are never rewritten.
func (db *DB) UpdatePhoto(ctx context.Context, id uuid.UUID, photo *models.Photo) error {
	rawJSON, err := json.Marshal(photo.RawMetadata)
	if err != nil {
		return fmt.Errorf("marshal raw metadata for %s: %w", photo.SourceURI, err)
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`UPDATE photos
		 SET filename = ?, file_size = ?, mime_type = ?, taken_at = ?,
		     raw_metadata = ?, batch_id = ?
		 WHERE id = ?`,
		photo.Filename, photo.FileSize, photo.MimeType, nullableTime(photo.TakenAt),
		string(rawJSON), nullableString(photo.BatchID), id.String())
	metrics.RecordDBQuery("UPDATE", "photos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("update photo %s: %w", photo.SourceURI, err)
	}
	return nil
}

// CountPhotos returns the total number of photo records.
func (db *DB) CountPhotos(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM photos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var (
		photo   models.Photo
		idStr   string
		takenAt sql.NullTime
		rawJSON sql.NullString
		batchID sql.NullString
	)

	err := row.Scan(&idStr, &photo.SourceURI, &photo.Filename, &photo.FileSize,
		&photo.MimeType, &takenAt, &rawJSON, &batchID, &photo.CreatedAt)
	if err != nil {
		return nil, err
	}

	photo.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse photo id %q: %w", idStr, err)
	}
	if takenAt.Valid {
		t := takenAt.Time
		photo.TakenAt = &t
	}
	if rawJSON.Valid && rawJSON.String != "" {
		if err := json.Unmarshal([]byte(rawJSON.String), &photo.RawMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal raw metadata: %w", err)
		}
	}
	if batchID.Valid {
		s := batchID.String
		photo.BatchID = &s
	}
	return &photo, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
