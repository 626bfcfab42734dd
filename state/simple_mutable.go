// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var _ Mutable = (*SimpleMutable)(nil)

// SimpleMutable is a copy-on-write overlay over an immutable parent view.
// Writes are buffered in memory and never touch the parent, which lets a
// builder work against shared chain state without mutating it.
type SimpleMutable struct {
	parent Immutable

	changes map[string]maybe.Maybe[[]byte]
}

func NewSimpleMutable(parent Immutable) *SimpleMutable {
	return &SimpleMutable{
		parent:  parent,
		changes: map[string]maybe.Maybe[[]byte]{},
	}
}

func (s *SimpleMutable) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.changes[key]; ok {
		if v.IsNothing() {
			return nil, database.ErrNotFound
		}
		return v.Value(), nil
	}
	return s.parent.Get(ctx, key)
}

func (s *SimpleMutable) Put(_ context.Context, key string, value []byte) error {
	s.changes[key] = maybe.Some(value)
	return nil
}

func (s *SimpleMutable) Delete(_ context.Context, key string) error {
	s.changes[key] = maybe.Nothing[[]byte]()
	return nil
}

// Commit flushes all buffered changes into [mu]. The overlay remains usable
// afterwards.
func (s *SimpleMutable) Commit(ctx context.Context, mu Mutable) error {
	for key, value := range s.changes {
		if value.IsNothing() {
			if err := mu.Delete(ctx, key); err != nil {
				return err
			}
			continue
		}
		if err := mu.Put(ctx, key, value.Value()); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops all buffered changes.
func (s *SimpleMutable) Discard() {
	s.changes = map[string]maybe.Maybe[[]byte]{}
}
