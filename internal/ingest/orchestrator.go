// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lensatlas/lensatlas/internal/config"
	"github.com/lensatlas/lensatlas/internal/events"
	"github.com/lensatlas/lensatlas/internal/extract"
	"github.com/lensatlas/lensatlas/internal/logging"
	"github.com/lensatlas/lensatlas/internal/metrics"
	"github.com/lensatlas/lensatlas/internal/models"
)

// RunOptions are the concrete, fully resolved parameters for one run.
type RunOptions struct {
	// Root is the directory scanned for ZIP containers.
	Root string

	// BatchID attaches the run to an existing batch when set; otherwise a
	// fresh batch-<uuid> is generated.
	BatchID string

	// Limit caps the total number of items streamed across all containers.
	// Negative means unlimited; zero means produce nothing.
	Limit int

	// Reprocess replaces existing records instead of skipping them.
	Reprocess bool

	// Recursive controls container discovery below Root.
	Recursive bool
}

// RunStats summarizes a finished (or failed) run.
type RunStats struct {
	BatchID        string        `json:"batch_id"`
	Status         string        `json:"status"`
	ProcessedFiles int64         `json:"processed_files"`
	SkippedFiles   int64         `json:"skipped_files"`
	FailedFiles    int64         `json:"failed_files"`
	Duration       time.Duration `json:"duration"`
}

// Orchestrator runs ingestion batches against a Store and publishes progress
// through a broadcaster.
type Orchestrator struct {
	store         Store
	broadcaster   *events.Broadcaster
	chunkSize     int
	maxConcurrent int
}

// NewOrchestrator wires an orchestrator. Chunk size and concurrency bounds
// come from the ingest configuration; values below 1 fall back to 1.
func NewOrchestrator(store Store, broadcaster *events.Broadcaster, cfg *config.IngestConfig) *Orchestrator {
	chunk := cfg.ChunkSize
	if chunk < 1 {
		chunk = 1
	}
	conc := cfg.MaxConcurrent
	if conc < 1 {
		conc = 1
	}
	return &Orchestrator{
		store:         store,
		broadcaster:   broadcaster,
		chunkSize:     chunk,
		maxConcurrent: conc,
	}
}

// NewBatchID generates a fresh batch identifier.
func NewBatchID() string {
	return "batch-" + uuid.New().String()
}

// Run executes one ingestion batch to a terminal state.
//
// Item-level failures are counted and logged but never abort the run. A
// batch-fatal error (unreachable root, store failure on the batch row,
// canceled context) marks the batch as errored and is also returned to the
// caller. Behavior is undefined when two runs share a batch ID concurrently.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunStats, error) {
	batchID := opts.BatchID
	if batchID == "" {
		batchID = NewBatchID()
	}
	start := time.Now()

	batch, err := o.store.GetOrCreateBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch %s: %w", batchID, err)
	}
	metrics.BatchesStarted.Inc()

	logging.Info().
		Str("batch_id", batch.BatchID).
		Str("root", opts.Root).
		Int("limit", opts.Limit).
		Bool("reprocess", opts.Reprocess).
		Msg("Ingestion batch started")

	var processed, skipped, failed int64
	chunk := make([]*models.MetadataItem, 0, o.chunkSize)

	flush := func() {
		if len(chunk) == 0 {
			return
		}
		p, s, f := o.processChunk(ctx, chunk, batchID, opts.Reprocess)
		processed += p
		skipped += s
		failed += f
		chunk = chunk[:0]
		o.reportProgress(ctx, batchID, processed, skipped, failed)
	}

	streamErr := extract.Stream(ctx, extract.Options{
		Root:      opts.Root,
		Recursive: opts.Recursive,
		Limit:     opts.Limit,
	}, func(item *models.MetadataItem) error {
		chunk = append(chunk, item)
		if len(chunk) >= o.chunkSize {
			flush()
		}
		return ctx.Err()
	})

	if streamErr != nil {
		return o.failRun(ctx, batchID, streamErr, processed, skipped, failed, start)
	}
	flush()

	if err := o.store.CompleteBatch(ctx, batchID, processed, skipped, failed); err != nil {
		return o.failRun(ctx, batchID, fmt.Errorf("failed to complete batch: %w", err), processed, skipped, failed, start)
	}
	metrics.BatchesCompleted.Inc()
	metrics.BatchDuration.Observe(time.Since(start).Seconds())

	data := events.NewProgressData(batchID, string(models.BatchStatusCompleted), processed, skipped, failed)
	o.broadcaster.Broadcast(events.Event{Type: events.TypeBatchCompleted, Data: data})

	stats := &RunStats{
		BatchID:        batchID,
		Status:         string(models.BatchStatusCompleted),
		ProcessedFiles: processed,
		SkippedFiles:   skipped,
		FailedFiles:    failed,
		Duration:       time.Since(start),
	}
	logging.Info().
		Str("batch_id", batchID).
		Int64("processed", processed).
		Int64("skipped", skipped).
		Int64("failed", failed).
		Dur("duration", stats.Duration).
		Msg("Ingestion batch completed")
	return stats, nil
}

// processChunk persists one chunk with at most maxConcurrent upserts in
// flight. It returns the chunk's (processed, skipped, failed) deltas.
func (o *Orchestrator) processChunk(ctx context.Context, chunk []*models.MetadataItem, batchID string, reprocess bool) (int64, int64, int64) {
	sem := make(chan struct{}, o.maxConcurrent)
	outcomes := make([]Outcome, len(chunk))

	var wg sync.WaitGroup
	for i, item := range chunk {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item *models.MetadataItem) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = OutcomeFailed
					logging.Error().
						Str("source_uri", item.SourceURI).
						Interface("panic", r).
						Msg("Photo upsert panicked")
				}
			}()
			outcome, err := upsertPhoto(ctx, o.store, item, batchID, reprocess)
			logOutcome(item.SourceURI, outcome, err)
			outcomes[i] = outcome
		}(i, item)
	}
	wg.Wait()

	var processed, skipped, failed int64
	for _, outcome := range outcomes {
		switch outcome {
		case OutcomeCreated, OutcomeUpdated:
			processed++
			metrics.PhotosProcessed.Inc()
		case OutcomeSkipped:
			skipped++
			metrics.PhotosSkipped.Inc()
		case OutcomeFailed:
			failed++
			metrics.PhotosFailed.Inc()
		}
	}
	return processed, skipped, failed
}

// reportProgress persists cumulative counters and broadcasts a progress
// snapshot. Both are best-effort; a hiccup here must not fail the run.
func (o *Orchestrator) reportProgress(ctx context.Context, batchID string, processed, skipped, failed int64) {
	if err := o.store.UpdateBatchProgress(ctx, batchID, processed, skipped, failed); err != nil {
		logging.Warn().Err(err).Str("batch_id", batchID).Msg("Failed to persist batch progress")
	}
	data := events.NewProgressData(batchID, string(models.BatchStatusRunning), processed, skipped, failed)
	o.broadcaster.Broadcast(events.Event{Type: events.TypeProgress, Data: data})
	logging.Info().
		Str("batch_id", batchID).
		Int64("processed", processed).
		Int64("skipped", skipped).
		Int64("failed", failed).
		Msg("Ingestion progress")
}

// failRun records a batch-fatal error, broadcasts it, and returns it.
func (o *Orchestrator) failRun(ctx context.Context, batchID string, cause error, processed, skipped, failed int64, start time.Time) (*RunStats, error) {
	// Use a detached context so the terminal transition still lands when the
	// run's own context was the thing that failed.
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := o.store.UpdateBatchProgress(failCtx, batchID, processed, skipped, failed); err != nil {
		logging.Warn().Err(err).Str("batch_id", batchID).Msg("Failed to persist final batch progress")
	}
	if err := o.store.FailBatch(failCtx, batchID, cause.Error()); err != nil {
		logging.Error().Err(err).Str("batch_id", batchID).Msg("Failed to mark batch as errored")
	}
	metrics.BatchesFailed.Inc()

	data := events.NewProgressData(batchID, string(models.BatchStatusError), processed, skipped, failed)
	data.Error = cause.Error()
	o.broadcaster.Broadcast(events.Event{Type: events.TypeBatchError, Data: data})

	logging.Error().Err(cause).Str("batch_id", batchID).Msg("Ingestion batch failed")
	return &RunStats{
		BatchID:        batchID,
		Status:         string(models.BatchStatusError),
		ProcessedFiles: processed,
		SkippedFiles:   skipped,
		FailedFiles:    failed,
		Duration:       time.Since(start),
	}, cause
}
