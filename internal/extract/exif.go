// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package extract

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/lensatlas/lensatlas/internal/logging"
	"github.com/lensatlas/lensatlas/internal/sanitize"
)

// tagCollector accumulates every EXIF tag into a name -> value map via the
// exif.Walker interface.
type tagCollector struct {
	tags map[string]interface{}
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.tags[string(name)] = tagValue(tag)
	return nil
}

// tagValue converts a TIFF tag to a plain scalar. String tags keep their
// text form; integral and rational tags become numbers; anything else falls
// back to the tag's string rendering.
func tagValue(tag *tiff.Tag) interface{} {
	switch tag.Format() {
	case tiff.StringVal:
		if s, err := tag.StringVal(); err == nil {
			return s
		}
	case tiff.IntVal:
		if n, err := tag.Int64(0); err == nil {
			return n
		}
	case tiff.FloatVal:
		if f, err := tag.Float(0); err == nil {
			return f
		}
	case tiff.RatVal:
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			return float64(num) / float64(den)
		}
	}
	return tag.String()
}

// parseExif decodes EXIF metadata from raw image bytes into normalized
// fields (make, model, lens, datetime_original) plus the full raw tag map.
// Decode failure (corrupt image, format without EXIF support) yields an
// empty map, never an error: one malformed entry must not abort the stream.
func parseExif(imageBytes []byte) map[string]interface{} {
	x, err := exif.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		logging.Debug().Err(err).Msg("no EXIF data extracted")
		return map[string]interface{}{}
	}

	collector := &tagCollector{tags: make(map[string]interface{})}
	if err := x.Walk(collector); err != nil {
		logging.Warn().Err(err).Msg("EXIF tag walk failed")
	}
	raw := sanitize.DeepMap(collector.tags)

	takenStr, _ := raw["DateTimeOriginal"].(string)
	if takenStr == "" {
		takenStr, _ = raw["DateTime"].(string)
	}

	normalized := map[string]interface{}{
		"make":              raw["Make"],
		"model":             raw["Model"],
		"lens":              raw["LensModel"],
		"datetime_original": takenStr,
		"raw":               raw,
	}
	logging.Debug().
		Int("tags", len(raw)).
		Str("taken", takenStr).
		Msg("extracted EXIF metadata")
	return normalized
}
