// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package sanitize

import (
	"fmt"
	"strconv"
	"time"
)

// exifDateFormats are the accepted EXIF date string layouts, tried in order.
var exifDateFormats = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
}

// ResolveTakenAt resolves a single best-effort capture timestamp from
// extracted EXIF fields and the sidecar JSON document.
//
// Fallback order, reflecting sidecar data being more reliable than
// camera-embedded EXIF:
//
//  1. sidecar photoTakenTime.timestamp, interpreted as UTC epoch seconds
//  2. EXIF datetime_original (DateTimeOriginal, then DateTime), parsed
//     against the accepted layouts; first successful parse wins
//  3. nil when neither source yields a timestamp
func ResolveTakenAt(exif, sidecar map[string]interface{}) *time.Time {
	if ts := sidecarEpoch(sidecar); ts != nil {
		return ts
	}

	dtStr, ok := exif["datetime_original"].(string)
	if !ok || dtStr == "" {
		return nil
	}
	for _, layout := range exifDateFormats {
		if t, err := time.ParseInLocation(layout, dtStr, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// sidecarEpoch extracts photoTakenTime.timestamp from a sidecar document.
// Export tools emit the epoch as a decimal string, but numeric values are
// tolerated as well.
func sidecarEpoch(sidecar map[string]interface{}) *time.Time {
	taken, ok := sidecar["photoTakenTime"].(map[string]interface{})
	if !ok {
		return nil
	}

	var epoch int64
	switch raw := taken["timestamp"].(type) {
	case string:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil
		}
		epoch = parsed
	case float64:
		epoch = int64(raw)
	case int64:
		epoch = raw
	case int:
		epoch = int64(raw)
	case fmt.Stringer:
		parsed, err := strconv.ParseInt(raw.String(), 10, 64)
		if err != nil {
			return nil
		}
		epoch = parsed
	default:
		return nil
	}

	t := time.Unix(epoch, 0).UTC()
	return &t
}
