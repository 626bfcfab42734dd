// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package eheap

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	id     ids.ID
	expiry int64
}

func (t *testItem) GetID() ids.ID    { return t.id }
func (t *testItem) GetExpiry() int64 { return t.expiry }

func newTestItem(expiry int64) *testItem {
	return &testItem{id: ids.GenerateTestID(), expiry: expiry}
}

func TestExpiryHeapOrdering(t *testing.T) {
	require := require.New(t)

	eh := New[*testItem]()
	for _, expiry := range []int64{300, 100, 200} {
		eh.Add(newTestItem(expiry))
	}
	require.Equal(3, eh.Len())

	min, ok := eh.PeekMin()
	require.True(ok)
	require.Equal(int64(100), min.GetExpiry())
}

func TestExpiryHeapSetMin(t *testing.T) {
	require := require.New(t)

	eh := New[*testItem]()
	for _, expiry := range []int64{100, 200, 300} {
		eh.Add(newTestItem(expiry))
	}

	removed := eh.SetMin(250)
	require.Len(removed, 2)
	require.Equal(int64(100), removed[0].GetExpiry())
	require.Equal(int64(200), removed[1].GetExpiry())
	require.Equal(1, eh.Len())
}

func TestExpiryHeapRemove(t *testing.T) {
	require := require.New(t)

	eh := New[*testItem]()
	item := newTestItem(100)
	eh.Add(item)
	require.True(eh.Has(item.GetID()))

	removed, ok := eh.Remove(item.GetID())
	require.True(ok)
	require.Equal(item, removed)
	require.False(eh.Has(item.GetID()))

	_, ok = eh.Remove(item.GetID())
	require.False(ok)
}
