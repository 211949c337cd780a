// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package extract

import (
	"path"
	"strings"
)

// mimeByExtension is the fixed lookup table from recognized image extensions
// to MIME types. Extensions outside this table never enter the pipeline.
var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// IsImage reports whether a member path has a recognized image extension,
// case-insensitive.
func IsImage(memberPath string) bool {
	_, ok := mimeByExtension[strings.ToLower(path.Ext(memberPath))]
	return ok
}

// MimeType returns the MIME type for a recognized image member path, or
// empty string for unrecognized extensions.
func MimeType(memberPath string) string {
	return mimeByExtension[strings.ToLower(path.Ext(memberPath))]
}
