// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	avatrace "github.com/ava-labs/avalanchego/trace"

	"github.com/forgelabs/payloadd/archive"
	"github.com/forgelabs/payloadd/executor"
	"github.com/forgelabs/payloadd/mempool"
	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/rpc"
	"github.com/forgelabs/payloadd/scheduler"
	"github.com/forgelabs/payloadd/state"
	"github.com/forgelabs/payloadd/store"
)

var (
	_ rpc.Backend = (*backend)(nil)

	errTxExpired = errors.New("transaction deadline passed")
)

type backend struct {
	tracer avatrace.Tracer
	handle *scheduler.Handle
	pool   *mempool.Mempool[*payload.Transaction]

	// archive is nil when archival is disabled.
	archive *archive.Archive
}

func (b *backend) Tracer() avatrace.Tracer { return b.tracer }

func (b *backend) SubmitTransaction(ctx context.Context, tx *payload.Transaction) error {
	if tx.Expiry() <= time.Now().UnixMilli() {
		return errTxExpired
	}
	b.pool.Add(ctx, []*payload.Transaction{tx})
	return nil
}

func (b *backend) StartBuild(ctx context.Context, attrs *payload.Attributes) (ids.ID, error) {
	return b.handle.Start(ctx, attrs)
}

func (b *backend) GetPayload(ctx context.Context, id ids.ID) (*payload.Payload, store.Status, error) {
	return b.handle.Resolve(ctx, id)
}

func (b *backend) CancelBuild(ctx context.Context, id ids.ID) error {
	return b.handle.Cancel(ctx, id)
}

func (b *backend) BestSoFar(ctx context.Context, id ids.ID) (*payload.Payload, store.Status, error) {
	return b.handle.BestSoFar(ctx, id)
}

func (b *backend) ArchivedPayload(ctx context.Context, id ids.ID) (*payload.Payload, error) {
	if b.archive == nil {
		return nil, database.ErrNotFound
	}
	return b.archive.Get(ctx, id)
}

// memState is a throwaway mutable view.
type memState struct {
	kvs map[string][]byte
}

func newMemState() *memState {
	return &memState{kvs: map[string][]byte{}}
}

func (m *memState) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.kvs[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (m *memState) Put(_ context.Context, key string, value []byte) error {
	m.kvs[key] = value
	return nil
}

func (m *memState) Delete(_ context.Context, key string) error {
	delete(m.kvs, key)
	return nil
}

// allocationSource serves every requested parent with a fresh view
// seeded from the configured allocations. Deployments with a real chain
// behind them plug their own [job.StateSource] in instead.
type allocationSource struct {
	allocations []Allocation
}

func (s *allocationSource) ParentView(ctx context.Context, _ ids.ID) (state.Immutable, error) {
	view := newMemState()
	for _, a := range s.allocations {
		if err := executor.SetBalance(ctx, view, string(a.Address[:]), a.Balance); err != nil {
			return nil, err
		}
	}
	return view, nil
}
