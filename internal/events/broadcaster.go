// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package events provides in-process publish/subscribe fan-out for ingestion
// progress events.
//
// Delivery is at-most-once and best-effort per subscriber: Broadcast never
// blocks, and a subscriber whose bounded channel is full at broadcast time is
// evicted from the subscriber set and its channel closed. Events are not
// persisted or replayed; a subscriber never observes events broadcast before
// it subscribed.
package events

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lensatlas/lensatlas/internal/logging"
	"github.com/lensatlas/lensatlas/internal/metrics"
)

// Event types published by the ingestion pipeline and its transports.
const (
	TypeConnected      = "connected"
	TypeHeartbeat      = "heartbeat"
	TypeProgress       = "progress"
	TypeBatchCompleted = "batch_completed"
	TypeBatchError     = "batch_error"
)

// Event is a tagged payload broadcast to subscribers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ProgressData is the progress snapshot carried by progress, batch_completed,
// and batch_error events.
type ProgressData struct {
	BatchID        string `json:"batch_id"`
	Status         string `json:"status"`
	ProcessedFiles int64  `json:"processed_files"`
	SkippedFiles   int64  `json:"skipped_files"`
	FailedFiles    int64  `json:"failed_files"`
	Error          string `json:"error,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// NewProgressData builds a ProgressData snapshot stamped with the current time.
func NewProgressData(batchID, status string, processed, skipped, failed int64) ProgressData {
	return ProgressData{
		BatchID:        batchID,
		Status:         status,
		ProcessedFiles: processed,
		SkippedFiles:   skipped,
		FailedFiles:    failed,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// subscriberIDCounter generates unique, monotonically increasing subscriber
// IDs so broadcast iteration order is deterministic.
var subscriberIDCounter atomic.Uint64

// Subscription is a registered subscriber's receive handle. The channel is
// closed when the subscriber is evicted or the broadcaster shuts down.
type Subscription struct {
	id uint64
	ch chan Event
}

// C returns the subscriber's receive channel.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Broadcaster fans events out to all registered subscribers.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	bufSize int
	closed  bool
}

// NewBroadcaster creates a broadcaster whose subscribers each get a bounded
// channel of the given capacity.
func NewBroadcaster(subscriberBuffer int) *Broadcaster {
	if subscriberBuffer < 1 {
		subscriberBuffer = 1
	}
	return &Broadcaster{
		subs:    make(map[uint64]*Subscription),
		bufSize: subscriberBuffer,
	}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		id: subscriberIDCounter.Add(1),
		ch: make(chan Event, b.bufSize),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	logging.Debug().Int("subscribers", len(b.subs)).Msg("event subscriber registered")
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call for
// an already-evicted subscriber.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
		logging.Debug().Int("subscribers", len(b.subs)).Msg("event subscriber removed")
	}
}

// Broadcast delivers an event to every registered subscriber without
// blocking. A subscriber whose channel is full is dropped from the set and
// its channel closed.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	// Iterate in ID order so delivery and eviction are reproducible.
	ordered := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		ordered = append(ordered, sub)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].id < ordered[j].id })

	var evicted []*Subscription
	for _, sub := range ordered {
		select {
		case sub.ch <- event:
		default:
			evicted = append(evicted, sub)
		}
	}

	for _, sub := range evicted {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
	if len(evicted) > 0 {
		metrics.WSSubscribersEvicted.Add(float64(len(evicted)))
		logging.Warn().
			Int("evicted", len(evicted)).
			Str("event_type", event.Type).
			Msg("dropped saturated event subscribers")
	}
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close shuts the broadcaster down, closing every subscriber channel.
// Subsequent Broadcast calls are no-ops and Subscribe returns a closed
// channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
