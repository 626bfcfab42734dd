// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statetest

import (
	"context"

	"github.com/ava-labs/avalanchego/database"

	"github.com/forgelabs/payloadd/state"
)

var _ state.Mutable = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of `state.Mutable`
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (i *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := i.Storage[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (i *InMemoryStore) Put(_ context.Context, key string, value []byte) error {
	i.Storage[key] = value
	return nil
}

func (i *InMemoryStore) Delete(_ context.Context, key string) error {
	delete(i.Storage, key)
	return nil
}
