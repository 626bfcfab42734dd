// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package job

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/payloadd/executor"
	"github.com/forgelabs/payloadd/executor/executortest"
	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/state"
	"github.com/forgelabs/payloadd/state/statetest"
	"github.com/forgelabs/payloadd/trace"
)

type sliceSource struct {
	txs []*payload.Transaction
}

func (s *sliceSource) Pending(context.Context) []*payload.Transaction {
	return s.txs
}

type singleView struct {
	parent ids.ID
	view   state.Immutable
}

func (s *singleView) ParentView(_ context.Context, parent ids.ID) (state.Immutable, error) {
	if parent != s.parent {
		return nil, errors.New("missing block")
	}
	return s.view, nil
}

func testAttributes(parent ids.ID) *payload.Attributes {
	return &payload.Attributes{
		Parent:       parent,
		Timestamp:    100,
		FeeRecipient: ids.GenerateTestShortID(),
		GasLimit:     10_000_000,
	}
}

func newTestGenerator(
	t *testing.T,
	exec executor.Executor,
	txs []*payload.Transaction,
	seed map[string]uint64,
) (*GreedyGenerator, ids.ID) {
	t.Helper()

	parent := ids.GenerateTestID()
	store := statetest.NewInMemoryStore()
	for payer, balance := range seed {
		require.NoError(t, executor.SetBalance(context.TODO(), store, payer, balance))
	}
	tracer, _ := trace.New(&trace.Config{Enabled: false})
	gen := NewGreedyGenerator(
		logging.NoLog{},
		tracer,
		exec,
		&sliceSource{txs: txs},
		&singleView{parent: parent, view: store},
		NewDefaultConfig(),
	)
	return gen, parent
}

func TestGreedySelection(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	payer := ids.GenerateTestShortID()
	// Fee-descending snapshot, as the pool would hand it over.
	txs := []*payload.Transaction{
		payload.NewTransaction(payer, 1, 21_000, 30, 600, nil),
		payload.NewTransaction(payer, 2, 21_000, 20, 600, nil),
		payload.NewTransaction(payer, 0, 21_000, 10, 600, nil),
	}
	gen, parent := newTestGenerator(t, &executortest.Executor{}, txs, nil)

	j, err := gen.NewJob(ctx, testAttributes(parent))
	require.NoError(err)

	// First advance emits the initial empty candidate.
	res := j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)
	require.Empty(res.Payload.Txs)
	require.Zero(res.Payload.Fees)

	// Second advance drains the pool greedily.
	res = j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)
	require.Len(res.Payload.Txs, 3)
	require.Equal(uint64(30), res.Payload.Txs[0].Fee)
	require.Equal(uint64(20), res.Payload.Txs[1].Fee)
	require.Equal(uint64(10), res.Payload.Txs[2].Fee)
	require.Equal(uint64(60), res.Payload.Fees)

	// Nothing left.
	res = j.Advance(ctx)
	require.Equal(StepExhausted, res.Kind)
}

func TestGreedyEmptyPool(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	gen, parent := newTestGenerator(t, &executortest.Executor{}, nil, nil)
	j, err := gen.NewJob(ctx, testAttributes(parent))
	require.NoError(err)

	res := j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)
	require.NotNil(res.Payload)
	require.Empty(res.Payload.Txs)

	res = j.Advance(ctx)
	require.Equal(StepExhausted, res.Kind)
}

func TestGreedyForcedInclusionFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	payer := ids.GenerateTestShortID()
	exec := &executortest.Executor{
		ExecuteF: func(context.Context, state.Mutable, *payload.Transaction) (*executor.Result, error) {
			return &executor.Result{Status: executor.Reverted, Reason: "always reverts"}, nil
		},
	}
	gen, parent := newTestGenerator(t, exec, nil, nil)

	attrs := testAttributes(parent)
	attrs.Forced = []*payload.Transaction{
		payload.NewTransaction(payer, 0, 21_000, 5, 600, nil),
	}
	j, err := gen.NewJob(ctx, attrs)
	require.NoError(err)

	res := j.Advance(ctx)
	require.Equal(StepFailed, res.Kind)
	require.ErrorIs(res.Err, ErrForcedInclusion)

	// A failed job never resumes.
	res = j.Advance(ctx)
	require.Equal(StepExhausted, res.Kind)
}

func TestGreedyForcedInclusionFirst(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	payer := ids.GenerateTestShortID()
	forced := payload.NewTransaction(payer, 0, 21_000, 1, 600, nil)
	pooled := payload.NewTransaction(payer, 1, 21_000, 50, 600, nil)

	// The forced transaction also sits in the pool snapshot; it must not
	// be included twice.
	gen, parent := newTestGenerator(
		t,
		&executortest.Executor{},
		[]*payload.Transaction{pooled, forced},
		nil,
	)
	attrs := testAttributes(parent)
	attrs.Forced = []*payload.Transaction{forced}

	j, err := gen.NewJob(ctx, attrs)
	require.NoError(err)

	res := j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)
	require.Len(res.Payload.Txs, 1)
	require.Equal(forced.ID(), res.Payload.Txs[0].ID())

	res = j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)
	require.Len(res.Payload.Txs, 2)
	require.Equal(forced.ID(), res.Payload.Txs[0].ID())
	require.Equal(pooled.ID(), res.Payload.Txs[1].ID())
	require.Equal(uint64(51), res.Payload.Fees)
}

func TestGreedyGasBudget(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	payer := ids.GenerateTestShortID()
	txs := []*payload.Transaction{
		payload.NewTransaction(payer, 0, 900, 30, 600, nil),
		payload.NewTransaction(payer, 1, 900, 20, 600, nil),
		payload.NewTransaction(payer, 2, 100, 10, 600, nil),
	}
	gen, parent := newTestGenerator(t, &executortest.Executor{}, txs, nil)

	attrs := testAttributes(parent)
	attrs.GasLimit = 1_000
	j, err := gen.NewJob(ctx, attrs)
	require.NoError(err)

	j.Advance(ctx) // initial candidate
	res := j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)
	// The 900-gas/20-fee tx does not fit after the first, but the
	// 100-gas tx still does.
	require.Len(res.Payload.Txs, 2)
	require.Equal(uint64(30), res.Payload.Txs[0].Fee)
	require.Equal(uint64(10), res.Payload.Txs[1].Fee)
	require.Equal(uint64(1_000), res.Payload.GasUsed)
}

func TestGreedyCancel(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	payer := ids.GenerateTestShortID()
	txs := []*payload.Transaction{
		payload.NewTransaction(payer, 0, 21_000, 30, 600, nil),
	}
	gen, parent := newTestGenerator(t, &executortest.Executor{}, txs, nil)
	j, err := gen.NewJob(ctx, testAttributes(parent))
	require.NoError(err)

	res := j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)

	j.Cancel()
	res = j.Advance(ctx)
	require.Equal(StepExhausted, res.Kind)
}

func TestGreedyNativeExecutor(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	rich := ids.GenerateTestShortID()
	poor := ids.GenerateTestShortID()
	txs := []*payload.Transaction{
		payload.NewTransaction(rich, 0, 21_000, 30, 600, nil),
		payload.NewTransaction(poor, 0, 21_000, 20, 600, nil),
		payload.NewTransaction(rich, 1, 21_000, 10, 600, nil),
	}
	gen, parent := newTestGenerator(t, executor.NewNative(), txs, map[string]uint64{
		string(rich[:]): 100,
	})
	j, err := gen.NewJob(ctx, testAttributes(parent))
	require.NoError(err)

	j.Advance(ctx)
	res := j.Advance(ctx)
	require.Equal(StepImproved, res.Kind)
	// The unfunded payer's transaction reverts and is skipped.
	require.Len(res.Payload.Txs, 2)
	require.Equal(uint64(40), res.Payload.Fees)
	require.Equal(rich, res.Payload.Txs[0].Payer)
	require.Equal(rich, res.Payload.Txs[1].Payer)
}

func TestGeneratorUnknownParent(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	gen, _ := newTestGenerator(t, &executortest.Executor{}, nil, nil)
	attrs := testAttributes(ids.GenerateTestID())
	_, err := gen.NewJob(ctx, attrs)
	require.ErrorIs(err, ErrUnknownParent)
}
