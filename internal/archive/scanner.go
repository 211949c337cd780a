// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package archive discovers photo export containers (ZIP files) under a root
// directory and lists their members without extracting payloads to disk.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lensatlas/lensatlas/internal/logging"
)

// Member is a single non-directory entry inside a container, addressed by
// its in-container path.
type Member struct {
	// Path is the member's full path inside the container.
	Path string

	// Size is the uncompressed size in bytes.
	Size int64
}

// DiscoverContainers returns the ZIP container files under root, sorted
// lexicographically for deterministic processing order. With recursive set,
// discovery descends into subdirectories; otherwise only top-level files are
// considered.
//
// An invalid root (missing, or not a directory) is a hard error: nothing has
// been processed yet and the caller must report the precondition failure.
func DiscoverContainers(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("takeout path invalid: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("takeout path invalid: %s is not a directory", root)
	}

	var containers []string
	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				// Unreadable subdirectory: skip it, keep scanning the rest.
				logging.Warn().Err(walkErr).Str("path", path).Msg("skipping unreadable path during discovery")
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && isZip(path) {
				containers = append(containers, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", root, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isZip(entry.Name()) {
				containers = append(containers, filepath.Join(root, entry.Name()))
			}
		}
	}

	sort.Strings(containers)
	return containers, nil
}

// ListMembers lists the non-directory members of a container with their
// uncompressed sizes. Payload bytes are not read.
//
// A corrupt or unreadable container yields an error the caller is expected
// to treat as recoverable: that container is skipped and the scan continues.
func ListMembers(containerPath string) ([]Member, error) {
	r, err := zip.OpenReader(containerPath)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", containerPath, err)
	}
	defer closeQuietly(r)

	members := make([]Member, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members = append(members, Member{
			Path: f.Name,
			Size: int64(f.UncompressedSize64),
		})
	}
	return members, nil
}

// ReadMember reads a single member's bytes from a container.
func ReadMember(containerPath, memberPath string) ([]byte, error) {
	r, err := zip.OpenReader(containerPath)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", containerPath, err)
	}
	defer closeQuietly(r)

	f, err := r.Open(memberPath)
	if err != nil {
		return nil, fmt.Errorf("open member %s: %w", memberPath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("member", memberPath).Msg("error closing member reader")
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read member %s: %w", memberPath, err)
	}
	return data, nil
}

// isZip reports whether a path names a ZIP container, case-insensitive.
func isZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

func closeQuietly(r *zip.ReadCloser) {
	if err := r.Close(); err != nil {
		logging.Warn().Err(err).Msg("error closing container")
	}
}
