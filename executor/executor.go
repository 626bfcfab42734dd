// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/state"
)

type Status uint8

const (
	// Applied means the transaction executed and its writes should be
	// committed to the candidate.
	Applied Status = iota
	// Reverted means the transaction executed and failed. Builders skip
	// reverted transactions; their writes are discarded.
	Reverted
	// ResourceExceeded means the transaction could not fit in the
	// remaining block resources. Not an error.
	ResourceExceeded
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case Reverted:
		return "reverted"
	case ResourceExceeded:
		return "resourceExceeded"
	default:
		return "unknown"
	}
}

// Result reports the outcome of applying one transaction.
type Result struct {
	Status Status

	// Only meaningful when Status == Applied.
	GasUsed uint64
	Fee     uint64

	// Revert reason, when Status == Reverted.
	Reason string
}

// Executor applies one transaction against a mutable view. An error
// return signals an unrecoverable fault (corrupt state, broken backend);
// expected transaction failures are reported via Result.Status.
//
// Executor implementations must be stateless per call aside from the
// explicit view argument.
type Executor interface {
	Execute(ctx context.Context, mu state.Mutable, tx *payload.Transaction) (*Result, error)
}
