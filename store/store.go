// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"

	"github.com/forgelabs/payloadd/payload"
)

type Status uint8

const (
	Building Status = iota
	Resolved
	Cancelled
	Failed
)

func (s Status) String() string {
	switch s {
	case Building:
		return "building"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus inverts [Status.String].
func ParseStatus(s string) (Status, error) {
	switch s {
	case "building":
		return Building, nil
	case "resolved":
		return Resolved, nil
	case "cancelled":
		return Cancelled, nil
	case "failed":
		return Failed, nil
	default:
		return 0, fmt.Errorf("unknown status %q", s)
	}
}

// Terminal reports whether no further payload updates are allowed.
func (s Status) Terminal() bool {
	return s != Building
}

// Entry is the per-id record: the best payload produced so far and the
// lifecycle state of its build.
type Entry struct {
	Payload *payload.Payload
	Status  Status

	// Reason is set when Status == Failed.
	Reason error

	CreatedAt int64 // unix ms
	UpdatedAt int64 // unix ms
}

// Store holds the best candidate per payload id. It knows nothing about
// jobs or scheduling; the scheduler is its only writer, which is what
// makes the monotonic-improvement invariant cheap to enforce.
type Store struct {
	tracer trace.Tracer

	mu      sync.RWMutex
	entries map[ids.ID]*Entry
}

func New(tracer trace.Tracer) *Store {
	return &Store{
		tracer:  tracer,
		entries: map[ids.ID]*Entry{},
	}
}

// Register creates an empty Building entry for [id]. Returns false if the
// id is already known.
func (s *Store) Register(ctx context.Context, id ids.ID) bool {
	_, span := s.tracer.Start(ctx, "Store.Register")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; ok {
		return false
	}
	now := time.Now().UnixMilli()
	s.entries[id] = &Entry{
		Status:    Building,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true
}

// Put records [p] as the best candidate for [id] if it improves on the
// current one. A worse-or-equal candidate is a silent no-op, never an
// error. Updates to terminal or unknown entries are dropped.
func (s *Store) Put(ctx context.Context, id ids.ID, p *payload.Payload) bool {
	_, span := s.tracer.Start(ctx, "Store.Put")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.Status.Terminal() {
		return false
	}
	if !p.Better(entry.Payload) {
		return false
	}
	entry.Payload = p
	entry.UpdatedAt = time.Now().UnixMilli()
	return true
}

// Finalize transitions [id] into a terminal state. Finalizing an already
// terminal entry is a no-op (the first terminal state wins).
func (s *Store) Finalize(ctx context.Context, id ids.ID, status Status, reason error) bool {
	_, span := s.tracer.Start(ctx, "Store.Finalize")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.Status.Terminal() {
		return false
	}
	entry.Status = status
	entry.Reason = reason
	entry.UpdatedAt = time.Now().UnixMilli()
	return true
}

// Get returns a copy of the entry for [id].
func (s *Store) Get(ctx context.Context, id ids.ID) (Entry, bool) {
	_, span := s.tracer.Start(ctx, "Store.Get")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Remove evicts the entry for [id].
func (s *Store) Remove(ctx context.Context, id ids.ID) {
	_, span := s.tracer.Start(ctx, "Store.Remove")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

// Len returns the number of entries.
func (s *Store) Len(ctx context.Context) int {
	_, span := s.tracer.Start(ctx, "Store.Len")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
