// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package job

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/forgelabs/payloadd/payload"
)

type StepKind uint8

const (
	// StepNoImprovement means work was done but the candidate did not get
	// better (everything pulled this round reverted or did not fit).
	StepNoImprovement StepKind = iota
	// StepImproved carries a new, strictly better candidate.
	StepImproved
	// StepExhausted means no further improvement is possible: the pool is
	// drained, the budget is consumed, or the job was cancelled.
	StepExhausted
	// StepFailed means the build cannot produce a valid payload (a forced
	// inclusion failed, or the executor faulted).
	StepFailed
)

func (k StepKind) String() string {
	switch k {
	case StepNoImprovement:
		return "noImprovement"
	case StepImproved:
		return "improved"
	case StepExhausted:
		return "exhausted"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepResult is the outcome of one Advance call.
type StepResult struct {
	Kind StepKind

	// Set when Kind == StepImproved.
	Payload *payload.Payload

	// Set when Kind == StepFailed.
	Err error
}

// Job is one in-progress payload construction task. A Job is stepped by
// exactly one scheduling context; it is not safe for concurrent Advance
// calls. Cancel may be called from anywhere.
type Job interface {
	ID() ids.ID

	// Advance performs one bounded unit of construction work.
	Advance(ctx context.Context) StepResult

	// Cancel is a best-effort signal to stop consuming resources. An
	// in-flight Advance may still complete; all subsequent Advance calls
	// return StepExhausted.
	Cancel()
}

// Generator creates a Job bound to a build strategy and the chain state
// at the requested parent.
type Generator interface {
	NewJob(ctx context.Context, attrs *payload.Attributes) (Job, error)
}
