// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package sanitize normalizes arbitrarily nested metadata structures into a
// deterministic, storage-safe form, and resolves best-effort capture
// timestamps from EXIF and sidecar sources.
package sanitize

import (
	"fmt"
	"strings"
	"time"
)

// Deep recursively walks an arbitrary nested structure (maps, slices,
// scalars) and returns a JSON-document-safe copy:
//
//   - byte slices are decoded as UTF-8 best-effort, dropping invalid sequences
//   - NUL characters are stripped from every string value and every map key
//     (the storage layer cannot represent NUL in text)
//   - numeric and boolean values pass through unchanged
//   - time values become RFC 3339 strings
//   - any unrecognized leaf type is stringified
func Deep(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return cleanString(string(val))
	case string:
		return cleanString(val)
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Deep(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[cleanString(k)] = Deep(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[cleanString(fmt.Sprint(k))] = Deep(item)
		}
		return out
	default:
		return cleanString(fmt.Sprint(val))
	}
}

// DeepMap sanitizes a metadata map, returning an empty non-nil map for nil input.
func DeepMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	out, ok := Deep(m).(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return out
}

// cleanString drops invalid UTF-8 sequences and embedded NUL characters.
func cleanString(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}
