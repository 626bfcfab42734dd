// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/payloadd/trace"
)

var testSponsor = ids.GenerateTestShortID()

type TestItem struct {
	id      ids.ID
	sponsor ids.ShortID
	price   uint64
	expiry  int64
}

func (ti *TestItem) ID() ids.ID {
	return ti.id
}

func (ti *TestItem) Sponsor() string {
	return string(ti.sponsor[:])
}

func (ti *TestItem) UnitPrice() uint64 {
	return ti.price
}

func (ti *TestItem) Expiry() int64 {
	return ti.expiry
}

func (*TestItem) Size() int {
	return 2 // distinguish from len
}

func GenerateTestItem(sponsor ids.ShortID, price uint64, expiry int64) *TestItem {
	return &TestItem{
		id:      ids.GenerateTestID(),
		sponsor: sponsor,
		price:   price,
		expiry:  expiry,
	}
}

func TestMempool(t *testing.T) {
	require := require.New(t)

	ctx := context.TODO()
	tracer, _ := trace.New(&trace.Config{Enabled: false})
	txm := New[*TestItem](tracer, 3, 16, nil)

	for _, price := range []uint64{100, 200, 300, 400} {
		item := GenerateTestItem(testSponsor, price, 600)
		txm.Add(ctx, []*TestItem{item})
	}
	// The lowest price item was evicted at the size cap.
	require.Equal(3, txm.Len(ctx))
	pending := txm.Pending(ctx)
	require.Len(pending, 3)
	require.Equal(uint64(400), pending[0].UnitPrice())
	require.Equal(uint64(200), pending[2].UnitPrice())
}

func TestMempoolAddDuplicates(t *testing.T) {
	require := require.New(t)

	ctx := context.TODO()
	tracer, _ := trace.New(&trace.Config{Enabled: false})
	txm := New[*TestItem](tracer, 3, 16, nil)

	item := GenerateTestItem(testSponsor, 300, 600)
	txm.Add(ctx, []*TestItem{item, item})
	require.Equal(1, txm.Len(ctx))
	txm.Add(ctx, []*TestItem{item})
	require.Equal(1, txm.Len(ctx))
}

func TestMempoolSponsorCap(t *testing.T) {
	require := require.New(t)

	ctx := context.TODO()
	tracer, _ := trace.New(&trace.Config{Enabled: false})
	txm := New[*TestItem](tracer, 16, 2, nil)

	for i := uint64(1); i <= 4; i++ {
		txm.Add(ctx, []*TestItem{GenerateTestItem(testSponsor, i, 600)})
	}
	require.Equal(2, txm.Len(ctx))

	other := ids.GenerateTestShortID()
	txm.Add(ctx, []*TestItem{GenerateTestItem(other, 10, 600)})
	require.Equal(3, txm.Len(ctx))
}

func TestMempoolSetMinTimestamp(t *testing.T) {
	require := require.New(t)

	ctx := context.TODO()
	tracer, _ := trace.New(&trace.Config{Enabled: false})
	txm := New[*TestItem](tracer, 16, 16, nil)

	for _, expiry := range []int64{100, 200, 300} {
		txm.Add(ctx, []*TestItem{GenerateTestItem(testSponsor, 1, expiry)})
	}
	removed := txm.SetMinTimestamp(ctx, 250)
	require.Len(removed, 2)
	require.Equal(1, txm.Len(ctx))
}

func TestMempoolPendingOrder(t *testing.T) {
	require := require.New(t)

	ctx := context.TODO()
	tracer, _ := trace.New(&trace.Config{Enabled: false})
	txm := New[*TestItem](tracer, 16, 16, nil)

	// Arrival order 10, 30, 20 (the concrete scheduler scenario).
	for _, price := range []uint64{10, 30, 20} {
		txm.Add(ctx, []*TestItem{GenerateTestItem(testSponsor, price, 600)})
	}
	pending := txm.Pending(ctx)
	require.Len(pending, 3)
	require.Equal(uint64(30), pending[0].UnitPrice())
	require.Equal(uint64(20), pending[1].UnitPrice())
	require.Equal(uint64(10), pending[2].UnitPrice())
}
