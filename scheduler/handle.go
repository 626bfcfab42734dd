// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/store"
)

// Handle is a client for a running [Scheduler]. It is safe for
// concurrent use; every method is a message round-trip with the event
// loop and respects [ctx] cancellation on both legs.
type Handle struct {
	cmds chan<- command
	stop <-chan struct{}
}

// Start begins building a payload for [attrs] and returns its id.
// Starting identical attributes again returns the same id without
// spawning a second job.
func (h *Handle) Start(ctx context.Context, attrs *payload.Attributes) (ids.ID, error) {
	resp := make(chan startResult, 1)
	if err := h.send(ctx, &startCommand{attrs: attrs, resp: resp}); err != nil {
		return ids.Empty, err
	}
	select {
	case r := <-resp:
		return r.id, r.err
	case <-ctx.Done():
		return ids.Empty, ctx.Err()
	case <-h.stop:
		return ids.Empty, ErrShutdown
	}
}

// Resolve finalizes the build for [id] and returns its best payload.
// Resolving an already terminal entry returns the retained payload.
func (h *Handle) Resolve(ctx context.Context, id ids.ID) (*payload.Payload, store.Status, error) {
	resp := make(chan lookupResult, 1)
	if err := h.send(ctx, &resolveCommand{id: id, resp: resp}); err != nil {
		return nil, 0, err
	}
	return h.recvLookup(ctx, resp)
}

// Cancel stops building [id]. The best payload so far stays queryable
// until eviction. Cancelling a terminal entry is a no-op.
func (h *Handle) Cancel(ctx context.Context, id ids.ID) error {
	resp := make(chan error, 1)
	if err := h.send(ctx, &cancelCommand{id: id, resp: resp}); err != nil {
		return err
	}
	select {
	case err := <-resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stop:
		return ErrShutdown
	}
}

// BestSoFar returns the current best payload for [id] without
// disturbing the build. The payload may be nil while the first
// candidate is still being produced.
func (h *Handle) BestSoFar(ctx context.Context, id ids.ID) (*payload.Payload, store.Status, error) {
	resp := make(chan lookupResult, 1)
	if err := h.send(ctx, &bestCommand{id: id, resp: resp}); err != nil {
		return nil, 0, err
	}
	return h.recvLookup(ctx, resp)
}

func (h *Handle) send(ctx context.Context, cmd command) error {
	select {
	case h.cmds <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stop:
		return ErrShutdown
	}
}

func (h *Handle) recvLookup(ctx context.Context, resp <-chan lookupResult) (*payload.Payload, store.Status, error) {
	select {
	case r := <-resp:
		return r.payload, r.status, r.err
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case <-h.stop:
		return nil, 0, ErrShutdown
	}
}
