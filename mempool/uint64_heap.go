// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

type uint64Entry[T Item] struct {
	id   ids.ID
	item T
	val  uint64

	index int
}

// uint64Heap tracks pending items by [val]
type uint64Heap[T Item] struct {
	isMinHeap bool

	items  []*uint64Entry[T]
	lookup map[ids.ID]*uint64Entry[T]
}

func newUint64Heap[T Item](items int, isMinHeap bool) *uint64Heap[T] {
	return &uint64Heap[T]{
		isMinHeap: isMinHeap,

		items:  make([]*uint64Entry[T], 0, items),
		lookup: make(map[ids.ID]*uint64Entry[T], items),
	}
}

func (th uint64Heap[T]) Len() int { return len(th.items) }

func (th uint64Heap[T]) Less(i, j int) bool {
	if th.isMinHeap {
		return th.items[i].val < th.items[j].val
	}
	return th.items[i].val > th.items[j].val
}

func (th uint64Heap[T]) Swap(i, j int) {
	th.items[i], th.items[j] = th.items[j], th.items[i]
	th.items[i].index = i
	th.items[j].index = j
}

func (th *uint64Heap[T]) Push(x interface{}) {
	entry, ok := x.(*uint64Entry[T])
	if !ok {
		panic(fmt.Errorf("unexpected %T, expected *uint64Entry", x))
	}
	if th.HasID(entry.id) {
		return
	}
	th.items = append(th.items, entry)
	th.lookup[entry.id] = entry
}

func (th *uint64Heap[T]) Pop() interface{} {
	n := len(th.items)
	item := th.items[n-1]
	th.items[n-1] = nil // avoid memory leak
	th.items = th.items[0 : n-1]
	delete(th.lookup, item.id)
	return item
}

func (th *uint64Heap[T]) GetID(id ids.ID) (*uint64Entry[T], bool) {
	entry, ok := th.lookup[id]
	return entry, ok
}

func (th *uint64Heap[T]) HasID(id ids.ID) bool {
	_, has := th.GetID(id)
	return has
}
