// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/forgelabs/payloadd/job"
	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/store"
)

// command is one request sent from a [Handle] to the event loop. Replies
// are delivered on single-use buffered channels so an abandoned caller
// never blocks the loop.
type command interface{}

type startCommand struct {
	attrs *payload.Attributes
	resp  chan startResult
}

type startResult struct {
	id  ids.ID
	err error
}

type resolveCommand struct {
	id   ids.ID
	resp chan lookupResult
}

type bestCommand struct {
	id   ids.ID
	resp chan lookupResult
}

type lookupResult struct {
	payload *payload.Payload
	status  store.Status
	err     error
}

type cancelCommand struct {
	id   ids.ID
	resp chan error
}

// advanceOutcome carries a finished background step back into the loop.
type advanceOutcome struct {
	id      ids.ID
	result  job.StepResult
	elapsed time.Duration
}
