// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package models defines the persisted and in-pipeline data types shared
// across the ingestion pipeline, storage layer, and API.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the lifecycle state of an ingestion batch.
// Transitions: pending -> running -> {completed, error}. Terminal states
// are final; a batch never leaves completed or error.
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusError     BatchStatus = "error"
)

// Batch tracks one ingestion run. The batch ID is globally unique;
// re-supplying an existing ID attaches to the same batch instead of
// creating a duplicate.
type Batch struct {
	BatchID        string      `json:"batch_id"`
	Status         BatchStatus `json:"status"`
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	TotalFiles     *int64      `json:"total_files,omitempty"`
	ProcessedFiles int64       `json:"processed_files"`
	SkippedFiles   int64       `json:"skipped_files"`
	FailedFiles    int64       `json:"failed_files"`
	ErrorMessage   *string     `json:"error_message,omitempty"`
}

// Photo is one ingested image's persisted metadata. SourceURI is the sole
// idempotency key: at most one record exists per source URI regardless of
// how many ingestion runs touch it.
type Photo struct {
	ID          uuid.UUID              `json:"id"`
	SourceURI   string                 `json:"source_uri"`
	Filename    string                 `json:"filename"`
	FileSize    int64                  `json:"file_size"`
	MimeType    string                 `json:"mime_type"`
	TakenAt     *time.Time             `json:"taken_at,omitempty"`
	RawMetadata map[string]interface{} `json:"raw_metadata,omitempty"`
	BatchID     *string                `json:"batch_id,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// MetadataItem is the transient, in-pipeline record produced by the
// extractor for each image-like archive member. It is consumed exactly
// once by the ingestion orchestrator and never persisted as-is.
type MetadataItem struct {
	// Filename is the base name of the member path.
	Filename string

	// SourceURI uniquely identifies (container basename, member path):
	// archive://<container>::<member-path>
	SourceURI string

	// FileSize is the uncompressed member size in bytes.
	FileSize int64

	// MimeType is derived from the member's extension.
	MimeType string

	// Exif holds normalized EXIF fields (make, model, lens,
	// datetime_original, raw). Empty map when the image carries no EXIF
	// or decoding failed.
	Exif map[string]interface{}

	// Sidecar holds the parsed companion JSON document, empty map when the
	// sidecar is absent or unparseable.
	Sidecar map[string]interface{}

	// TakenAt is the resolved capture timestamp, nil when neither the
	// sidecar nor EXIF provide one.
	TakenAt *time.Time
}
