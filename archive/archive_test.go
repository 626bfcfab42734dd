// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package archive

import (
	"context"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/trace"
)

func newTestArchive(t *testing.T) *Archive {
	require := require.New(t)

	tracer, err := trace.New(&trace.Config{Enabled: false})
	require.NoError(err)
	a, err := New(logging.NoLog{}, tracer, t.TempDir(), NewDefaultConfig())
	require.NoError(err)
	t.Cleanup(func() {
		require.NoError(a.Close())
	})
	return a
}

func newTestPayload(seed byte) *payload.Payload {
	tx := payload.NewTransaction(ids.ShortID{seed}, 0, 100, 25, time.Now().UnixMilli()+10_000, []byte{seed})
	return &payload.Payload{
		ID:           ids.ID{seed},
		Parent:       ids.ID{seed, 1},
		Timestamp:    1_700_000_000_000,
		FeeRecipient: ids.ShortID{seed, 2},
		StateRoot:    ids.ID{seed, 3},
		GasUsed:      100,
		Fees:         25,
		Txs:          []*payload.Transaction{tx},
		BuiltAt:      1_700_000_000_500,
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	require := require.New(t)
	a := newTestArchive(t)

	p := newTestPayload(1)
	require.NoError(a.Archive(context.TODO(), p))

	got, err := a.Get(context.TODO(), p.ID)
	require.NoError(err)
	require.Equal(p.ID, got.ID)
	require.Equal(p.Fees, got.Fees)
	require.Len(got.Txs, 1)
	require.Equal(p.Txs[0].ID(), got.Txs[0].ID())
}

func TestArchiveMissing(t *testing.T) {
	require := require.New(t)
	a := newTestArchive(t)

	_, err := a.Get(context.TODO(), ids.GenerateTestID())
	require.ErrorIs(err, database.ErrNotFound)

	ok, err := a.Has(context.TODO(), ids.GenerateTestID())
	require.NoError(err)
	require.False(ok)
}

func TestArchiveOverwrite(t *testing.T) {
	require := require.New(t)
	a := newTestArchive(t)

	p := newTestPayload(7)
	require.NoError(a.Archive(context.TODO(), p))
	require.NoError(a.Archive(context.TODO(), p))

	ok, err := a.Has(context.TODO(), p.ID)
	require.NoError(err)
	require.True(ok)
}
