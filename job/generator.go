// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/forgelabs/payloadd/executor"
	"github.com/forgelabs/payloadd/payload"
)

var (
	_ Generator = (*GreedyGenerator)(nil)

	ErrForcedInclusion = errors.New("forced inclusion failed")
	ErrUnknownParent   = errors.New("unknown parent")
)

type Config struct {
	// TxsPerAdvance bounds how many pool transactions one Advance call
	// may attempt.
	TxsPerAdvance int `json:"txsPerAdvance"`
	// TargetAdvanceDuration caps the wall-clock time of one Advance call.
	TargetAdvanceDuration time.Duration `json:"targetAdvanceDuration"`
}

func NewDefaultConfig() Config {
	return Config{
		TxsPerAdvance:         64,
		TargetAdvanceDuration: 25 * time.Millisecond,
	}
}

// GreedyGenerator builds Greedy jobs over a snapshot of the pool and the
// state at the requested parent.
type GreedyGenerator struct {
	log    logging.Logger
	tracer trace.Tracer
	exec   executor.Executor
	source TxSource
	states StateSource
	cfg    Config
}

func NewGreedyGenerator(
	log logging.Logger,
	tracer trace.Tracer,
	exec executor.Executor,
	source TxSource,
	states StateSource,
	cfg Config,
) *GreedyGenerator {
	return &GreedyGenerator{
		log:    log,
		tracer: tracer,
		exec:   exec,
		source: source,
		states: states,
		cfg:    cfg,
	}
}

func (g *GreedyGenerator) NewJob(ctx context.Context, attrs *payload.Attributes) (Job, error) {
	parent, err := g.states.ParentView(ctx, attrs.Parent)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParent, attrs.Parent)
	}
	return newGreedy(
		g.log,
		g.tracer,
		g.exec,
		attrs,
		parent,
		g.source.Pending(ctx),
		g.cfg.TxsPerAdvance,
		g.cfg.TargetAdvanceDuration,
	), nil
}
