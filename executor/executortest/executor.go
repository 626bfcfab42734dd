// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executortest

import (
	"context"

	"github.com/forgelabs/payloadd/executor"
	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/state"
)

var _ executor.Executor = (*Executor)(nil)

// Executor lets a test script arbitrary execution outcomes.
type Executor struct {
	ExecuteF func(ctx context.Context, mu state.Mutable, tx *payload.Transaction) (*executor.Result, error)
}

func (e *Executor) Execute(ctx context.Context, mu state.Mutable, tx *payload.Transaction) (*executor.Result, error) {
	if e.ExecuteF == nil {
		return &executor.Result{
			Status:  executor.Applied,
			GasUsed: tx.Gas,
			Fee:     tx.Fee,
		}, nil
	}
	return e.ExecuteF(ctx, mu, tx)
}
