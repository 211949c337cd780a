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

	"github.com/lensatlas/lensatlas/internal/models"
)

// GetOrCreateBatch fetches the batch with the given ID, creating it in the
// running state when absent. Re-supplying an existing ID attaches to the same
// batch instead of creating a duplicate.
func (db *DB) GetOrCreateBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	batch, err := db.getBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch != nil {
		return batch, nil
	}

	now := time.Now().UTC()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO ingest_batches (batch_id, status, started_at) VALUES (?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		batchID, string(models.BatchStatusRunning), now)
	if err != nil {
		return nil, fmt.Errorf("insert batch %s: %w", batchID, err)
	}

	// Re-read instead of assuming the insert won: a concurrent creator may
	// have hit the conflict path first.
	batch, err = db.getBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("batch %s vanished after insert", batchID)
	}
	return batch, nil
}

// GetBatch returns the batch with the given ID, or nil when absent.
func (db *DB) GetBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	return db.getBatch(ctx, batchID)
}

// getBatch returns the batch with the given ID, or nil when absent.
func (db *DB) getBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT batch_id, status, started_at, completed_at, total_files,
		        processed_files, skipped_files, failed_files, error_message
		 FROM ingest_batches WHERE batch_id = ?`, batchID)

	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query batch %s: %w", batchID, err)
	}
	return batch, nil
}

// UpdateBatchProgress sets a batch's cumulative counters.
func (db *DB) UpdateBatchProgress(ctx context.Context, batchID string, processed, skipped, failed int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE ingest_batches
		 SET processed_files = ?, skipped_files = ?, failed_files = ?
		 WHERE batch_id = ?`,
		processed, skipped, failed, batchID)
	if err != nil {
		return fmt.Errorf("update batch progress %s: %w", batchID, err)
	}
	return nil
}

// CompleteBatch transitions a batch to the terminal completed state with its
// final counters and completion timestamp.
func (db *DB) CompleteBatch(ctx context.Context, batchID string, processed, skipped, failed int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE ingest_batches
		 SET status = ?, processed_files = ?, skipped_files = ?, failed_files = ?, completed_at = ?
		 WHERE batch_id = ?`,
		string(models.BatchStatusCompleted), processed, skipped, failed, time.Now().UTC(), batchID)
	if err != nil {
		return fmt.Errorf("complete batch %s: %w", batchID, err)
	}
	return nil
}

// FailBatch transitions a batch to the terminal error state, recording the
// failure message.
func (db *DB) FailBatch(ctx context.Context, batchID, message string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE ingest_batches SET status = ?, error_message = ? WHERE batch_id = ?`,
		string(models.BatchStatusError), message, batchID)
	if err != nil {
		return fmt.Errorf("fail batch %s: %w", batchID, err)
	}
	return nil
}

// ListBatches returns the most recently started batches first, up to limit.
func (db *DB) ListBatches(ctx context.Context, limit int) ([]models.Batch, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT batch_id, status, started_at, completed_at, total_files,
		        processed_files, skipped_files, failed_files, error_message
		 FROM ingest_batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	batches := make([]models.Batch, 0, limit)
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, *batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row rowScanner) (*models.Batch, error) {
	var (
		batch       models.Batch
		status      string
		completedAt sql.NullTime
		totalFiles  sql.NullInt64
		errMessage  sql.NullString
	)

	err := row.Scan(&batch.BatchID, &status, &batch.StartedAt, &completedAt,
		&totalFiles, &batch.ProcessedFiles, &batch.SkippedFiles,
		&batch.FailedFiles, &errMessage)
	if err != nil {
		return nil, err
	}

	batch.Status = models.BatchStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		batch.CompletedAt = &t
	}
	if totalFiles.Valid {
		n := totalFiles.Int64
		batch.TotalFiles = &n
	}
	if errMessage.Valid {
		s := errMessage.String
		batch.ErrorMessage = &s
	}
	return &batch, nil
}
