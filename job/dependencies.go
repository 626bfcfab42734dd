// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package job

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/state"
)

// TxSource supplies candidate transactions in priority order. Pending
// returns a fee-descending snapshot; builders iterate it with their own
// cursor and exclusion set.
type TxSource interface {
	Pending(ctx context.Context) []*payload.Transaction
}

// StateSource resolves a read-only view of chain state at a parent block.
type StateSource interface {
	ParentView(ctx context.Context, parent ids.ID) (state.Immutable, error)
}
