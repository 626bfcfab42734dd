// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/store"
)

type Backend interface {
	Tracer() trace.Tracer

	// SubmitTransaction admits [tx] to the transaction pool feeding
	// future builds.
	SubmitTransaction(ctx context.Context, tx *payload.Transaction) error

	StartBuild(ctx context.Context, attrs *payload.Attributes) (ids.ID, error)
	GetPayload(ctx context.Context, id ids.ID) (*payload.Payload, store.Status, error)
	CancelBuild(ctx context.Context, id ids.ID) error
	BestSoFar(ctx context.Context, id ids.ID) (*payload.Payload, store.Status, error)

	// ArchivedPayload returns [database.ErrNotFound] when [id] was never
	// archived or archival is disabled.
	ArchivedPayload(ctx context.Context, id ids.ID) (*payload.Payload, error)
}
