// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func testAttributes() *Attributes {
	return &Attributes{
		Parent:       ids.GenerateTestID(),
		Timestamp:    100,
		FeeRecipient: ids.GenerateTestShortID(),
		Random:       ids.GenerateTestID(),
		GasLimit:     10_000_000,
	}
}

func TestAttributesIDDeterministic(t *testing.T) {
	require := require.New(t)

	attrs := testAttributes()
	require.Equal(attrs.ID(), attrs.ID())

	clone := *attrs
	require.Equal(attrs.ID(), clone.ID())
}

func TestAttributesIDSensitivity(t *testing.T) {
	base := testAttributes()

	tests := []struct {
		name   string
		mutate func(*Attributes)
	}{
		{"parent", func(a *Attributes) { a.Parent = ids.GenerateTestID() }},
		{"timestamp", func(a *Attributes) { a.Timestamp++ }},
		{"feeRecipient", func(a *Attributes) { a.FeeRecipient = ids.GenerateTestShortID() }},
		{"random", func(a *Attributes) { a.Random = ids.GenerateTestID() }},
		{"gasLimit", func(a *Attributes) { a.GasLimit++ }},
		{"withdrawals", func(a *Attributes) {
			a.Withdrawals = []*Withdrawal{{Index: 1, Validator: 7, Amount: 9}}
		}},
		{"forced", func(a *Attributes) {
			a.Forced = []*Transaction{NewTransaction(ids.GenerateTestShortID(), 0, 1, 1, 200, nil)}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			mutated := *base
			tt.mutate(&mutated)
			require.NotEqual(base.ID(), mutated.ID())
		})
	}
}

func TestPayloadBetter(t *testing.T) {
	require := require.New(t)

	low := &Payload{Fees: 10, BuiltAt: 1}
	high := &Payload{Fees: 30, BuiltAt: 2}
	tied := &Payload{Fees: 30, BuiltAt: 3}

	require.True(low.Better(nil))
	require.True(high.Better(low))
	require.False(low.Better(high))

	// Equal fees: the incumbent is retained.
	require.False(tied.Better(high))
	require.False(high.Better(tied))
}

func TestPayloadRoundTrip(t *testing.T) {
	require := require.New(t)

	payer := ids.GenerateTestShortID()
	p := &Payload{
		ID:           ids.GenerateTestID(),
		Parent:       ids.GenerateTestID(),
		Timestamp:    100,
		FeeRecipient: ids.GenerateTestShortID(),
		StateRoot:    ids.GenerateTestID(),
		GasUsed:      21_000,
		Fees:         60,
		Txs: []*Transaction{
			NewTransaction(payer, 0, 21_000, 30, 500, []byte("a")),
			NewTransaction(payer, 1, 21_000, 20, 500, nil),
		},
		Withdrawals: []*Withdrawal{
			{Index: 3, Validator: 12, Address: ids.GenerateTestShortID(), Amount: 77},
		},
		BuiltAt: 123,
	}

	b, err := p.Bytes()
	require.NoError(err)

	got, err := Unmarshal(b)
	require.NoError(err)
	require.Equal(p.ID, got.ID)
	require.Equal(p.Fees, got.Fees)
	require.Len(got.Txs, 2)
	require.Equal(p.Txs[0].ID(), got.Txs[0].ID())
	require.Equal(p.Txs[1].ID(), got.Txs[1].ID())
	require.Len(got.Withdrawals, 1)
	require.Equal(p.Withdrawals[0].Amount, got.Withdrawals[0].Amount)
	require.Equal(p.BuiltAt, got.BuiltAt)
}

func TestTransactionIDStable(t *testing.T) {
	require := require.New(t)

	payer := ids.GenerateTestShortID()
	a := NewTransaction(payer, 0, 21_000, 10, 500, []byte("x"))
	b := NewTransaction(payer, 0, 21_000, 10, 500, []byte("x"))
	c := NewTransaction(payer, 1, 21_000, 10, 500, []byte("x"))
	require.Equal(a.ID(), b.ID())
	require.NotEqual(a.ID(), c.ID())
}
