// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package ingest drives end-to-end ingestion runs.
//
// A run resolves (or creates) its batch record, streams normalized metadata
// items from the extraction pipeline, persists them in fixed-size chunks with
// bounded concurrency, and publishes a progress snapshot after every chunk.
// Item-level failures are isolated: a single bad image, sidecar, or store
// write is counted and logged but never aborts sibling work or the batch.
//
// The package also owns the idempotent photo upsert (keyed solely by source
// URI) and the runtime override store that lets operators adjust the default
// takeout path, limit, and reprocess flag without restarting the server.
package ingest
