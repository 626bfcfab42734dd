// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package job

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/math"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/forgelabs/payloadd/executor"
	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/state"
	"github.com/forgelabs/payloadd/utils"
)

var _ Job = (*Greedy)(nil)

// Greedy is the default build strategy: forced inclusions first, then
// fee-descending pulls from the pool snapshot. Reverted and oversized
// transactions are skipped; a failing forced inclusion fails the job.
type Greedy struct {
	log    logging.Logger
	tracer trace.Tracer
	exec   executor.Executor

	id    ids.ID
	attrs *payload.Attributes

	// view accumulates the writes of every included transaction. It never
	// mutates the shared parent state.
	view *state.SimpleMutable

	pending []*payload.Transaction
	cursor  int

	included []*payload.Transaction
	seen     set.Set[ids.ID]
	gasUsed  uint64
	fees     uint64

	txsPerAdvance int
	targetAdvance time.Duration

	started   bool
	exhausted bool
	cancelled atomic.Bool
}

func newGreedy(
	log logging.Logger,
	tracer trace.Tracer,
	exec executor.Executor,
	attrs *payload.Attributes,
	parent state.Immutable,
	pending []*payload.Transaction,
	txsPerAdvance int,
	targetAdvance time.Duration,
) *Greedy {
	return &Greedy{
		log:    log,
		tracer: tracer,
		exec:   exec,

		id:    attrs.ID(),
		attrs: attrs,

		view:    state.NewSimpleMutable(parent),
		pending: pending,

		included: []*payload.Transaction{},
		seen:     set.Set[ids.ID]{},

		txsPerAdvance: txsPerAdvance,
		targetAdvance: targetAdvance,
	}
}

func (g *Greedy) ID() ids.ID { return g.id }

func (g *Greedy) Cancel() {
	g.cancelled.Store(true)
}

func (g *Greedy) Advance(ctx context.Context) StepResult {
	ctx, span := g.tracer.Start(ctx, "Greedy.Advance")
	defer span.End()

	if g.exhausted || g.cancelled.Load() {
		g.exhausted = true
		return StepResult{Kind: StepExhausted}
	}

	if !g.started {
		return g.start(ctx)
	}
	return g.extend(ctx)
}

// start applies the forced inclusions and emits the initial candidate so
// an early resolve always observes a valid (possibly empty) payload.
func (g *Greedy) start(ctx context.Context) StepResult {
	for _, tx := range g.attrs.Forced {
		res, err := g.apply(ctx, tx)
		if err != nil {
			g.exhausted = true
			return StepResult{Kind: StepFailed, Err: err}
		}
		if res.Status != executor.Applied {
			g.exhausted = true
			return StepResult{
				Kind: StepFailed,
				Err:  fmt.Errorf("%w: %s (%s)", ErrForcedInclusion, tx.ID(), res.Status),
			}
		}
	}
	g.started = true
	return StepResult{Kind: StepImproved, Payload: g.snapshot()}
}

// extend pulls up to txsPerAdvance transactions from the pool snapshot.
func (g *Greedy) extend(ctx context.Context) StepResult {
	var (
		begin    = time.Now()
		improved = false
	)
	for attempts := g.txsPerAdvance; attempts > 0 && g.cursor < len(g.pending); attempts-- {
		if g.cancelled.Load() {
			break
		}
		if g.targetAdvance > 0 && time.Since(begin) > g.targetAdvance {
			g.log.Debug("advance capped by target duration",
				zap.Stringer("payload", g.id),
				zap.Duration("t", time.Since(begin)),
			)
			break
		}

		tx := g.pending[g.cursor]
		g.cursor++

		if g.seen.Contains(tx.ID()) {
			continue
		}
		if tx.Expiry() < g.attrs.Timestamp {
			continue
		}
		if g.gasUsed+tx.Gas > g.attrs.GasLimit {
			// Does not fit; a smaller transaction later in the snapshot
			// still might.
			continue
		}

		res, err := g.apply(ctx, tx)
		if err != nil {
			g.exhausted = true
			return StepResult{Kind: StepFailed, Err: err}
		}
		switch res.Status {
		case executor.Applied:
			improved = true
		case executor.Reverted:
			g.log.Debug("skipping reverted transaction",
				zap.Stringer("tx", tx.ID()),
				zap.String("reason", res.Reason),
			)
		case executor.ResourceExceeded:
			g.log.Debug("skipping oversized transaction", zap.Stringer("tx", tx.ID()))
		}
	}

	if improved {
		return StepResult{Kind: StepImproved, Payload: g.snapshot()}
	}
	if g.cursor >= len(g.pending) || g.cancelled.Load() {
		g.exhausted = true
		return StepResult{Kind: StepExhausted}
	}
	return StepResult{Kind: StepNoImprovement}
}

// apply executes [tx] against a scratch overlay and folds the writes into
// the candidate view only on success.
func (g *Greedy) apply(ctx context.Context, tx *payload.Transaction) (*executor.Result, error) {
	scratch := state.NewSimpleMutable(g.view)
	res, err := g.exec.Execute(ctx, scratch, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, tx.ID())
	}
	if res.Status != executor.Applied {
		return res, nil
	}
	if err := scratch.Commit(ctx, g.view); err != nil {
		return nil, err
	}
	fees, err := math.Add64(g.fees, res.Fee)
	if err != nil {
		return nil, err
	}
	g.fees = fees
	g.gasUsed += res.GasUsed
	g.included = append(g.included, tx)
	g.seen.Add(tx.ID())
	return res, nil
}

// snapshot builds the current candidate payload. The state root is a
// commitment to the parent and the included transaction ids, recomputed
// on every improvement.
func (g *Greedy) snapshot() *payload.Payload {
	p := wrappers.Packer{MaxSize: (len(g.included) + 1) * ids.IDLen * 2, Bytes: make([]byte, 0, (len(g.included)+1)*ids.IDLen)}
	p.PackFixedBytes(g.attrs.Parent[:])
	for _, tx := range g.included {
		id := tx.ID()
		p.PackFixedBytes(id[:])
	}
	txs := make([]*payload.Transaction, len(g.included))
	copy(txs, g.included)
	return &payload.Payload{
		ID:           g.id,
		Parent:       g.attrs.Parent,
		Timestamp:    g.attrs.Timestamp,
		FeeRecipient: g.attrs.FeeRecipient,
		StateRoot:    utils.ToID(p.Bytes),
		GasUsed:      g.gasUsed,
		Fees:         g.fees,
		Txs:          txs,
		Withdrawals:  g.attrs.Withdrawals,
		BuiltAt:      time.Now().UnixMilli(),
	}
}
