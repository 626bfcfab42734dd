// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"container/heap"

	"github.com/ava-labs/avalanchego/ids"
)

// SortedMempool keeps a bidirectionally sorted view of items by an
// arbitrary uint64 value (fee yield, expiry, ...).
type SortedMempool[T Item] struct {
	f func(item T) uint64

	minHeap *uint64Heap[T]
	maxHeap *uint64Heap[T]
}

func NewSortedMempool[T Item](items int, f func(item T) uint64) *SortedMempool[T] {
	return &SortedMempool[T]{
		f:       f,
		minHeap: newUint64Heap[T](items, true),
		maxHeap: newUint64Heap[T](items, false),
	}
}

func (sm *SortedMempool[T]) Add(item T) {
	itemID := item.ID()
	poolLen := sm.maxHeap.Len()
	val := sm.f(item)
	heap.Push(sm.maxHeap, &uint64Entry[T]{
		id:    itemID,
		val:   val,
		item:  item,
		index: poolLen,
	})
	heap.Push(sm.minHeap, &uint64Entry[T]{
		id:    itemID,
		val:   val,
		item:  item,
		index: poolLen,
	})
}

func (sm *SortedMempool[T]) Remove(id ids.ID) {
	maxEntry, ok := sm.maxHeap.GetID(id) // O(1)
	if !ok {
		return
	}
	heap.Remove(sm.maxHeap, maxEntry.index) // O(log N)
	minEntry, ok := sm.minHeap.GetID(id)
	if !ok {
		// This should never happen, as that would mean the heaps are out of
		// sync.
		return
	}
	heap.Remove(sm.minHeap, minEntry.index) // O(log N)
}

// SetMinVal removes all items with a value less than [val] and returns them.
func (sm *SortedMempool[T]) SetMinVal(val uint64) []T {
	removed := []T{}
	for {
		min, ok := sm.PeekMin()
		if !ok {
			break
		}
		if sm.f(min) < val {
			sm.PopMin() // Assumes that there is not concurrent access to [SortedMempool]
			removed = append(removed, min)
			continue
		}
		break
	}
	return removed
}

// All invokes [f] on every item until it returns false. Iteration order is
// unspecified.
func (sm *SortedMempool[T]) All(f func(item T) bool) {
	for _, entry := range sm.maxHeap.items {
		if !f(entry.item) {
			return
		}
	}
}

func (sm *SortedMempool[T]) PeekMin() (T, bool) {
	if sm.minHeap.Len() == 0 {
		return *new(T), false
	}
	return sm.minHeap.items[0].item, true
}

func (sm *SortedMempool[T]) PopMin() (T, bool) {
	if sm.minHeap.Len() == 0 {
		return *new(T), false
	}
	item := sm.minHeap.items[0].item
	sm.Remove(item.ID())
	return item, true
}

func (sm *SortedMempool[T]) PeekMax() (T, bool) {
	if sm.Len() == 0 {
		return *new(T), false
	}
	return sm.maxHeap.items[0].item, true
}

func (sm *SortedMempool[T]) PopMax() (T, bool) {
	if sm.Len() == 0 {
		return *new(T), false
	}
	item := sm.maxHeap.items[0].item
	sm.Remove(item.ID())
	return item, true
}

func (sm *SortedMempool[T]) Has(id ids.ID) bool {
	return sm.minHeap.HasID(id)
}

func (sm *SortedMempool[T]) Len() int {
	return sm.minHeap.Len()
}
