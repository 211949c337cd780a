// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package ingest

import (
	"context"
	"testing"

	"github.com/lensatlas/lensatlas/internal/config"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestBadgerOverrides(t *testing.T) {
	store, err := NewBadgerOverrides(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerOverrides() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	t.Run("load before save returns nil", func(t *testing.T) {
		ov, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if ov != nil {
			t.Errorf("Load() = %+v, want nil", ov)
		}
	})

	t.Run("save and load round-trip", func(t *testing.T) {
		want := &Overrides{
			TakeoutPath: "/mnt/takeout",
			Limit:       intPtr(100),
			Reprocess:   boolPtr(true),
		}
		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got == nil {
			t.Fatal("Load() = nil after Save")
		}
		if got.TakeoutPath != want.TakeoutPath {
			t.Errorf("TakeoutPath = %s, want %s", got.TakeoutPath, want.TakeoutPath)
		}
		if got.Limit == nil || *got.Limit != 100 {
			t.Errorf("Limit = %v, want 100", got.Limit)
		}
		if got.Reprocess == nil || !*got.Reprocess {
			t.Errorf("Reprocess = %v, want true", got.Reprocess)
		}
	})

	t.Run("clear removes overrides", func(t *testing.T) {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		ov, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if ov != nil {
			t.Errorf("Load() after Clear = %+v, want nil", ov)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		if err := store.Clear(ctx); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})
}

func TestNewOverrideStore(t *testing.T) {
	t.Run("empty path falls back to memory", func(t *testing.T) {
		store, err := NewOverrideStore("")
		if err != nil {
			t.Fatalf("NewOverrideStore() error = %v", err)
		}
		defer func() { _ = store.Close() }()

		if _, ok := store.(*InMemoryOverrides); !ok {
			t.Errorf("NewOverrideStore(\"\") = %T, want *InMemoryOverrides", store)
		}
	})

	t.Run("path opens badger store", func(t *testing.T) {
		store, err := NewOverrideStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewOverrideStore() error = %v", err)
		}
		defer func() { _ = store.Close() }()

		if _, ok := store.(*BadgerOverrides); !ok {
			t.Errorf("NewOverrideStore(dir) = %T, want *BadgerOverrides", store)
		}
	})
}

func TestInMemoryOverrides(t *testing.T) {
	store := NewInMemoryOverrides()
	ctx := context.Background()

	if err := store.Save(ctx, &Overrides{TakeoutPath: "/a"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	ov, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ov == nil || ov.TakeoutPath != "/a" {
		t.Errorf("Load() = %+v, want TakeoutPath /a", ov)
	}

	// Mutating the loaded copy must not leak into the store.
	ov.TakeoutPath = "/b"
	again, _ := store.Load(ctx)
	if again.TakeoutPath != "/a" {
		t.Errorf("stored TakeoutPath = %s, want /a", again.TakeoutPath)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if ov, _ := store.Load(ctx); ov != nil {
		t.Errorf("Load() after Clear = %+v, want nil", ov)
	}
}

func TestResolveOptions(t *testing.T) {
	cfg := &config.IngestConfig{TakeoutPath: "/data/takeout"}

	tests := []struct {
		name string
		req  RequestOptions
		ov   *Overrides
		want RunOptions
	}{
		{
			name: "config defaults only",
			req:  RequestOptions{},
			ov:   nil,
			want: RunOptions{Root: "/data/takeout", Limit: -1},
		},
		{
			name: "override beats config",
			req:  RequestOptions{},
			ov:   &Overrides{TakeoutPath: "/override", Limit: intPtr(5), Reprocess: boolPtr(true)},
			want: RunOptions{Root: "/override", Limit: 5, Reprocess: true},
		},
		{
			name: "request beats override",
			req:  RequestOptions{TakeoutPath: "/request", Limit: intPtr(7), Reprocess: boolPtr(false)},
			ov:   &Overrides{TakeoutPath: "/override", Limit: intPtr(5), Reprocess: boolPtr(true)},
			want: RunOptions{Root: "/request", Limit: 7, Reprocess: false},
		},
		{
			name: "partial override fills gaps only",
			req:  RequestOptions{Limit: intPtr(3)},
			ov:   &Overrides{TakeoutPath: "/override"},
			want: RunOptions{Root: "/override", Limit: 3},
		},
		{
			name: "batch id passes through",
			req:  RequestOptions{BatchID: "batch-abc"},
			ov:   nil,
			want: RunOptions{Root: "/data/takeout", BatchID: "batch-abc", Limit: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOptions(tt.req, tt.ov, cfg)
			if got != tt.want {
				t.Errorf("ResolveOptions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
