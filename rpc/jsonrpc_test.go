// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	avatrace "github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/store"
	"github.com/forgelabs/payloadd/trace"
)

type testBackend struct {
	tracer avatrace.Tracer

	started   map[ids.ID]*payload.Attributes
	payloads  map[ids.ID]*payload.Payload
	archived  map[ids.ID]*payload.Payload
	submitted []*payload.Transaction
}

func (b *testBackend) Tracer() avatrace.Tracer { return b.tracer }

func (b *testBackend) SubmitTransaction(_ context.Context, tx *payload.Transaction) error {
	b.submitted = append(b.submitted, tx)
	return nil
}

func (b *testBackend) StartBuild(_ context.Context, attrs *payload.Attributes) (ids.ID, error) {
	id := attrs.ID()
	b.started[id] = attrs
	return id, nil
}

func (b *testBackend) GetPayload(_ context.Context, id ids.ID) (*payload.Payload, store.Status, error) {
	p, ok := b.payloads[id]
	if !ok {
		return nil, 0, database.ErrNotFound
	}
	return p, store.Resolved, nil
}

func (b *testBackend) CancelBuild(_ context.Context, id ids.ID) error {
	if _, ok := b.started[id]; !ok {
		return database.ErrNotFound
	}
	return nil
}

func (b *testBackend) BestSoFar(_ context.Context, id ids.ID) (*payload.Payload, store.Status, error) {
	p, ok := b.payloads[id]
	if !ok {
		return nil, 0, database.ErrNotFound
	}
	return p, store.Building, nil
}

func (b *testBackend) ArchivedPayload(_ context.Context, id ids.ID) (*payload.Payload, error) {
	p, ok := b.archived[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func newTestClient(t *testing.T) (*JSONRPCClient, *testBackend) {
	require := require.New(t)

	tracer, err := trace.New(&trace.Config{Enabled: false})
	require.NoError(err)
	b := &testBackend{
		tracer:   tracer,
		started:  map[ids.ID]*payload.Attributes{},
		payloads: map[ids.ID]*payload.Payload{},
		archived: map[ids.ID]*payload.Payload{},
	}

	handler, err := NewJSONRPCHandler(Name, NewJSONRPCServer(b))
	require.NoError(err)
	mux := http.NewServeMux()
	mux.Handle(JSONRPCEndpoint, handler)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return NewJSONRPCClient(ts.URL), b
}

func TestPing(t *testing.T) {
	require := require.New(t)

	cli, _ := newTestClient(t)
	ok, err := cli.Ping(context.TODO())
	require.NoError(err)
	require.True(ok)
}

func TestSubmitTransaction(t *testing.T) {
	require := require.New(t)

	cli, b := newTestClient(t)
	tx := payload.NewTransaction(ids.ShortID{5}, 3, 200, 15, time.Now().UnixMilli()+10_000, []byte("data"))

	txID, err := cli.SubmitTransaction(context.TODO(), tx)
	require.NoError(err)
	require.Equal(tx.ID(), txID)
	require.Len(b.submitted, 1)
	require.Equal(tx.ID(), b.submitted[0].ID())
}

func TestStartBuildRoundTrip(t *testing.T) {
	require := require.New(t)

	cli, b := newTestClient(t)

	forced := payload.NewTransaction(ids.ShortID{1}, 0, 100, 10, time.Now().UnixMilli()+10_000, []byte("raw"))
	attrs := &payload.Attributes{
		Parent:       ids.ID{1},
		Timestamp:    1_700_000_000_000,
		FeeRecipient: ids.ShortID{2},
		GasLimit:     10_000_000,
		Withdrawals: []*payload.Withdrawal{
			{Index: 1, Validator: 9, Address: ids.ShortID{3}, Amount: 5},
		},
		Forced: []*payload.Transaction{forced},
	}

	id, err := cli.StartBuild(context.TODO(), attrs)
	require.NoError(err)
	require.Equal(attrs.ID(), id)

	// The server reconstructed identical attributes from the wire form.
	got := b.started[id]
	require.Equal(attrs.ID(), got.ID())
	require.Len(got.Forced, 1)
	require.Equal(forced.ID(), got.Forced[0].ID())
}

func TestGetPayload(t *testing.T) {
	require := require.New(t)

	cli, b := newTestClient(t)

	tx := payload.NewTransaction(ids.ShortID{1}, 0, 100, 25, time.Now().UnixMilli()+10_000, nil)
	p := &payload.Payload{
		ID:      ids.ID{7},
		Parent:  ids.ID{1},
		GasUsed: 100,
		Fees:    25,
		Txs:     []*payload.Transaction{tx},
	}
	b.payloads[p.ID] = p

	got, status, err := cli.GetPayload(context.TODO(), p.ID)
	require.NoError(err)
	require.Equal(store.Resolved, status)
	require.Equal(p.ID, got.ID)
	require.Equal(p.Fees, got.Fees)
	require.Len(got.Txs, 1)
	require.Equal(tx.ID(), got.Txs[0].ID())

	_, _, err = cli.GetPayload(context.TODO(), ids.GenerateTestID())
	require.ErrorContains(err, database.ErrNotFound.Error())
}

func TestCancelBuild(t *testing.T) {
	require := require.New(t)

	cli, b := newTestClient(t)
	id := ids.GenerateTestID()
	b.started[id] = &payload.Attributes{}

	require.NoError(cli.CancelBuild(context.TODO(), id))
	require.Error(cli.CancelBuild(context.TODO(), ids.GenerateTestID()))
}

func TestArchivedPayloadMissing(t *testing.T) {
	require := require.New(t)

	cli, _ := newTestClient(t)
	_, err := cli.ArchivedPayload(context.TODO(), ids.GenerateTestID())
	require.ErrorContains(err, database.ErrNotFound.Error())
}
