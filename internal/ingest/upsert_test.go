// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package ingest

import (
	"testing"
	"time"

	"github.com/lensatlas/lensatlas/internal/models"
)

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeCreated, "created"},
		{OutcomeUpdated, "updated"},
		{OutcomeSkipped, "skipped"},
		{OutcomeFailed, "failed"},
		{Outcome(42), "outcome(42)"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(tt.outcome), got, tt.want)
		}
	}
}

func TestBuildPhoto(t *testing.T) {
	taken := time.Date(2023, 11, 14, 22, 13, 20, 0, time.FixedZone("CET", 3600))
	item := &models.MetadataItem{
		Filename:  "IMG_1.jpg",
		SourceURI: "archive://t.zip::A/IMG_1.jpg",
		FileSize:  123,
		MimeType:  "image/jpeg",
		Exif:      map[string]interface{}{"make": "Canon\x00"},
		Sidecar:   map[string]interface{}{"title": "IMG_1.jpg"},
		TakenAt:   &taken,
	}

	photo := buildPhoto(item, "batch-xyz")

	if photo.SourceURI != item.SourceURI {
		t.Errorf("SourceURI = %s, want %s", photo.SourceURI, item.SourceURI)
	}
	if photo.BatchID == nil || *photo.BatchID != "batch-xyz" {
		t.Errorf("BatchID = %v, want batch-xyz", photo.BatchID)
	}
	if photo.TakenAt == nil || photo.TakenAt.Location() != time.UTC {
		t.Errorf("TakenAt = %v, want UTC", photo.TakenAt)
	}

	exif, ok := photo.RawMetadata["exif"].(map[string]interface{})
	if !ok {
		t.Fatalf("RawMetadata[exif] = %T, want map", photo.RawMetadata["exif"])
	}
	if exif["make"] != "Canon" {
		t.Errorf("sanitized make = %q, want Canon", exif["make"])
	}
	if _, ok := photo.RawMetadata["sidecar"]; !ok {
		t.Error("RawMetadata should carry sidecar document")
	}

	t.Run("empty metadata omitted", func(t *testing.T) {
		bare := buildPhoto(&models.MetadataItem{SourceURI: "archive://t.zip::b.png"}, "batch-xyz")
		if len(bare.RawMetadata) != 0 {
			t.Errorf("RawMetadata = %v, want empty", bare.RawMetadata)
		}
		if bare.TakenAt != nil {
			t.Errorf("TakenAt = %v, want nil", bare.TakenAt)
		}
	})
}
