// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/set"
	"golang.org/x/exp/slices"
)

const maxPrealloc = 4_096

// Item is the interface that anything stored in the mempool must satisfy.
type Item interface {
	ID() ids.ID
	Sponsor() string
	UnitPrice() uint64
	Expiry() int64
	Size() int
}

type Mempool[T Item] struct {
	tracer trace.Tracer

	mu sync.RWMutex

	maxSize        int
	maxSponsorSize int // Maximum items allowed by a single sponsor

	pm *SortedMempool[T] // Price Mempool
	tm *SortedMempool[T] // Time Mempool

	// [owned] is used to remove all items from a sponsor at once
	owned map[string]set.Set[ids.ID]

	// sponsors that are exempt from [maxSponsorSize]
	exemptSponsors set.Set[string]
}

// New creates a new [Mempool]. [maxSize] must be > 0 or else the
// implementation may panic.
func New[T Item](
	tracer trace.Tracer,
	maxSize int,
	maxSponsorSize int,
	exemptSponsors []string,
) *Mempool[T] {
	m := &Mempool[T]{
		tracer: tracer,

		maxSize:        maxSize,
		maxSponsorSize: maxSponsorSize,

		pm: NewSortedMempool(
			min(maxSize, maxPrealloc),
			func(item T) uint64 { return item.UnitPrice() },
		),
		tm: NewSortedMempool(
			min(maxSize, maxPrealloc),
			func(item T) uint64 { return uint64(item.Expiry()) },
		),
		owned:          map[string]set.Set[ids.ID]{},
		exemptSponsors: set.Set[string]{},
	}
	for _, sponsor := range exemptSponsors {
		m.exemptSponsors.Add(sponsor)
	}
	return m
}

func (m *Mempool[T]) removeFromOwned(item T) {
	sender := item.Sponsor()
	acct, ok := m.owned[sender]
	if !ok {
		// May no longer be populated
		return
	}
	acct.Remove(item.ID())
	if len(acct) == 0 {
		delete(m.owned, sender)
	}
}

// Has returns if the pm of [m] contains [itemID]
func (m *Mempool[T]) Has(ctx context.Context, itemID ids.ID) bool {
	_, span := m.tracer.Start(ctx, "Mempool.Has")
	defer span.End()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pm.Has(itemID)
}

// Add pushes all new items from [items] to m. Does not add an item if
// the item sponsor is not exempt and their items in the mempool exceed
// m.maxSponsorSize. If the size of m exceeds m.maxSize, Add pops the
// lowest value item from m.pm.
func (m *Mempool[T]) Add(ctx context.Context, items []T) {
	_, span := m.tracer.Start(ctx, "Mempool.Add")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		sender := item.Sponsor()

		// Ensure no duplicate
		if m.pm.Has(item.ID()) {
			continue
		}

		acct, ok := m.owned[sender]
		if !ok {
			acct = set.Set[ids.ID]{}
			m.owned[sender] = acct
		}
		if !m.exemptSponsors.Contains(sender) && acct.Len() == m.maxSponsorSize {
			continue // do nothing, wait for items to expire
		}
		m.pm.Add(item)
		m.tm.Add(item)
		acct.Add(item.ID())

		// Remove the lowest paying item if at global max
		if m.pm.Len() > m.maxSize {
			lowItem, _ := m.pm.PopMin()
			m.tm.Remove(lowItem.ID())
			m.removeFromOwned(lowItem)
		}
	}
}

// Remove deletes [items] from m.
func (m *Mempool[T]) Remove(ctx context.Context, items []T) {
	_, span := m.tracer.Start(ctx, "Mempool.Remove")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		m.pm.Remove(item.ID())
		m.tm.Remove(item.ID())
		m.removeFromOwned(item)
	}
}

// Len returns the number of items in m.
func (m *Mempool[T]) Len(ctx context.Context) int {
	_, span := m.tracer.Start(ctx, "Mempool.Len")
	defer span.End()

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.pm.Len()
}

// SetMinTimestamp removes all items with a lower expiry than [t] from m.
// SetMinTimestamp returns the list of removed items.
func (m *Mempool[T]) SetMinTimestamp(ctx context.Context, t int64) []T {
	_, span := m.tracer.Start(ctx, "Mempool.SetMinTimestamp")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.tm.SetMinVal(uint64(t))
	for _, remove := range removed {
		m.pm.Remove(remove.ID())
		m.removeFromOwned(remove)
	}
	return removed
}

// Pending returns a snapshot of all items ordered by descending unit
// price. The mempool is unchanged; builders iterate the snapshot with
// their own cursor.
func (m *Mempool[T]) Pending(ctx context.Context) []T {
	_, span := m.tracer.Start(ctx, "Mempool.Pending")
	defer span.End()

	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]T, 0, m.pm.Len())
	m.pm.All(func(item T) bool {
		items = append(items, item)
		return true
	})
	slices.SortFunc(items, func(a, b T) int {
		ap, bp := a.UnitPrice(), b.UnitPrice()
		switch {
		case ap > bp:
			return -1
		case ap < bp:
			return 1
		}
		// Deterministic order for equal prices: earlier expiry first,
		// then id.
		ae, be := a.Expiry(), b.Expiry()
		switch {
		case ae < be:
			return -1
		case ae > be:
			return 1
		}
		aid, bid := a.ID(), b.ID()
		return aid.Compare(bid)
	})
	return items
}
