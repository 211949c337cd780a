// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package extract streams normalized photo metadata out of export containers.
//
// For every image-like member of every discovered container, the extractor
// reads the image bytes for EXIF extraction and the exact-sibling JSON
// sidecar (<member>.json) when present, then produces a models.MetadataItem
// with a stable source URI for idempotent persistence. All per-member
// failures degrade to empty metadata instead of aborting the stream.
package extract

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/lensatlas/lensatlas/internal/archive"
	"github.com/lensatlas/lensatlas/internal/logging"
	"github.com/lensatlas/lensatlas/internal/metrics"
	"github.com/lensatlas/lensatlas/internal/models"
	"github.com/lensatlas/lensatlas/internal/sanitize"
)

// progressLogEvery controls how often the extractor logs stream progress.
const progressLogEvery = 10

// Options configures a metadata stream.
type Options struct {
	// Root is the directory scanned for ZIP containers.
	Root string

	// Recursive controls whether discovery descends into subdirectories.
	Recursive bool

	// Limit truncates the overall stream (not per-container) when
	// non-negative; a negative value streams everything. Once the limit is
	// reached no further containers are opened for content reads.
	Limit int
}

// Stream walks all containers under opts.Root in deterministic order and
// invokes yield for each normalized metadata item. A non-nil error from
// yield stops the stream and is returned as-is.
//
// Corrupt containers are skipped with a warning; only root-level failures
// (invalid root) and context cancellation abort the stream.
func Stream(ctx context.Context, opts Options, yield func(*models.MetadataItem) error) error {
	containers, err := archive.DiscoverContainers(opts.Root, opts.Recursive)
	if err != nil {
		return err
	}
	logging.Info().
		Int("containers", len(containers)).
		Str("root", opts.Root).
		Msg("discovered containers")

	count := 0
	for _, containerPath := range containers {
		if opts.Limit >= 0 && count >= opts.Limit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		members, err := archive.ListMembers(containerPath)
		if err != nil {
			// Archive-level failure: skip this container, keep the run alive.
			logging.Warn().Err(err).Str("container", containerPath).Msg("skipping unreadable container")
			continue
		}
		metrics.ContainersScanned.Inc()

		names := make(map[string]bool, len(members))
		for _, m := range members {
			names[m.Path] = true
		}

		imageCount := 0
		for _, member := range members {
			if !IsImage(member.Path) {
				continue
			}
			imageCount++

			item := extractOne(containerPath, member, names)
			if err := yield(item); err != nil {
				return err
			}

			count++
			if count%progressLogEvery == 0 {
				logging.Info().Int("streamed", count).Msg("metadata stream progress")
			}
			if opts.Limit >= 0 && count >= opts.Limit {
				logging.Info().Int("limit", opts.Limit).Msg("reached stream limit")
				return nil
			}
		}
		logging.Debug().
			Str("container", filepath.Base(containerPath)).
			Int("images", imageCount).
			Msg("container drained")
	}

	logging.Info().Int("total", count).Msg("metadata stream complete")
	return nil
}

// extractOne builds a MetadataItem for a single image member. All I/O and
// parse failures are converted into empty metadata.
func extractOne(containerPath string, member archive.Member, names map[string]bool) *models.MetadataItem {
	sidecar := map[string]interface{}{}
	sidecarPath := member.Path + ".json"
	if names[sidecarPath] {
		raw, err := archive.ReadMember(containerPath, sidecarPath)
		if err != nil {
			logging.Warn().Err(err).Str("sidecar", sidecarPath).Msg("error reading sidecar")
		} else {
			sidecar = parseSidecar(raw)
		}
	}

	exifMeta := map[string]interface{}{}
	imageBytes, err := archive.ReadMember(containerPath, member.Path)
	if err != nil {
		logging.Warn().Err(err).Str("member", member.Path).Msg("error reading image member")
	} else {
		exifMeta = parseExif(imageBytes)
	}

	return &models.MetadataItem{
		Filename:  path.Base(member.Path),
		SourceURI: SourceURI(containerPath, member.Path),
		FileSize:  member.Size,
		MimeType:  MimeType(member.Path),
		Exif:      exifMeta,
		Sidecar:   sidecar,
		TakenAt:   sanitize.ResolveTakenAt(exifMeta, sidecar),
	}
}

// parseSidecar parses sidecar JSON bytes, substituting an empty document on
// failure.
func parseSidecar(raw []byte) map[string]interface{} {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		logging.Warn().Err(err).Msg("failed to parse sidecar JSON")
		return map[string]interface{}{}
	}
	return doc
}

// SourceURI derives the stable idempotency key for a member:
// archive://<container-basename>::<member-path>.
func SourceURI(containerPath, memberPath string) string {
	return fmt.Sprintf("archive://%s::%s", filepath.Base(containerPath), memberPath)
}
