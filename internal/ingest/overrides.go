// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/lensatlas/lensatlas/internal/config"
	"github.com/lensatlas/lensatlas/internal/logging"
)

// Overrides are operator-set runtime defaults for ingestion runs. Nil/empty
// fields are unset and fall through to the static configuration. They apply
// only when the triggering request leaves the corresponding field blank:
// request > override > config.
type Overrides struct {
	TakeoutPath string `json:"takeout_path,omitempty"`
	Limit       *int   `json:"limit,omitempty"`
	Reprocess   *bool  `json:"reprocess,omitempty"`
}

// OverrideStore persists ingestion overrides across restarts.
type OverrideStore interface {
	Save(ctx context.Context, ov *Overrides) error
	Load(ctx context.Context) (*Overrides, error)
	Clear(ctx context.Context) error
	Close() error
}

const overridesKey = "ingest:overrides"

// NewOverrideStore picks the store implementation for the configured path.
// An empty path disables persistence, so overrides live in memory only and
// are lost on restart.
func NewOverrideStore(path string) (OverrideStore, error) {
	if path == "" {
		logging.Info().Msg("No override path configured, keeping ingest overrides in memory")
		return NewInMemoryOverrides(), nil
	}
	return NewBadgerOverrides(path)
}

// BadgerOverrides stores overrides in an embedded Badger database.
type BadgerOverrides struct {
	db *badger.DB
}

// NewBadgerOverrides opens (or creates) the override database at path.
func NewBadgerOverrides(path string) (*BadgerOverrides, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open override store at %s: %w", path, err)
	}
	logging.Debug().Str("path", path).Msg("Override store opened")
	return &BadgerOverrides{db: db}, nil
}

func (s *BadgerOverrides) Save(_ context.Context, ov *Overrides) error {
	data, err := json.Marshal(ov)
	if err != nil {
		return fmt.Errorf("failed to marshal overrides: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(overridesKey), data)
	})
}

// Load returns the stored overrides, or nil when none are set.
func (s *BadgerOverrides) Load(_ context.Context) (*Overrides, error) {
	var ov *Overrides
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(overridesKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			ov = &Overrides{}
			return json.Unmarshal(val, ov)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	return ov, nil
}

func (s *BadgerOverrides) Clear(_ context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(overridesKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func (s *BadgerOverrides) Close() error {
	return s.db.Close()
}

// InMemoryOverrides is a volatile OverrideStore for tests and ephemeral
// deployments.
type InMemoryOverrides struct {
	mu sync.RWMutex
	ov *Overrides
}

func NewInMemoryOverrides() *InMemoryOverrides {
	return &InMemoryOverrides{}
}

func (s *InMemoryOverrides) Save(_ context.Context, ov *Overrides) error {
	cp := *ov
	s.mu.Lock()
	s.ov = &cp
	s.mu.Unlock()
	return nil
}

func (s *InMemoryOverrides) Load(_ context.Context) (*Overrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ov == nil {
		return nil, nil
	}
	cp := *s.ov
	return &cp, nil
}

func (s *InMemoryOverrides) Clear(_ context.Context) error {
	s.mu.Lock()
	s.ov = nil
	s.mu.Unlock()
	return nil
}

func (s *InMemoryOverrides) Close() error { return nil }

// RequestOptions carries the per-request fields of a trigger call. Nil/empty
// fields defer to the stored overrides, then the static configuration.
type RequestOptions struct {
	TakeoutPath string
	BatchID     string
	Limit       *int
	Reprocess   *bool
}

// ResolveOptions merges a trigger request with stored overrides and static
// config into the concrete options for one run. ov may be nil.
func ResolveOptions(req RequestOptions, ov *Overrides, cfg *config.IngestConfig) RunOptions {
	opts := RunOptions{
		Root:      cfg.TakeoutPath,
		BatchID:   req.BatchID,
		Limit:     -1,
		Recursive: cfg.Recursive,
	}
	if ov != nil {
		if ov.TakeoutPath != "" {
			opts.Root = ov.TakeoutPath
		}
		if ov.Limit != nil {
			opts.Limit = *ov.Limit
		}
		if ov.Reprocess != nil {
			opts.Reprocess = *ov.Reprocess
		}
	}
	if req.TakeoutPath != "" {
		opts.Root = req.TakeoutPath
	}
	if req.Limit != nil {
		opts.Limit = *req.Limit
	}
	if req.Reprocess != nil {
		opts.Reprocess = *req.Reprocess
	}
	return opts
}
