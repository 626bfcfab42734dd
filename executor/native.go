// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/math"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/state"
)

const balancePrefix = "balance/"

// MaxTxGas bounds a single transaction; anything above it reports
// ResourceExceeded instead of executing.
const MaxTxGas = 15_000_000

var (
	_ Executor = (*Native)(nil)

	ErrNonceTooLow = errors.New("nonce too low")
)

// Native is a reference executor that debits the payer's balance by the
// transaction fee and tracks per-payer nonces. It exists so the daemon
// and tests have a concrete executor; production deployments plug in a
// real state-transition engine behind the same interface.
type Native struct{}

func NewNative() *Native {
	return &Native{}
}

func BalanceKey(payer string) string {
	return balancePrefix + payer
}

func nonceKey(payer string) string {
	return "nonce/" + payer
}

func getUint64(ctx context.Context, im state.Immutable, key string) (uint64, error) {
	v, err := im.Get(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("invalid uint64 at %q", key)
	}
	return binary.BigEndian.Uint64(v), nil
}

func putUint64(ctx context.Context, mu state.Mutable, key string, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return mu.Put(ctx, key, b)
}

// SetBalance seeds [payer] with [amount]. Used at genesis.
func SetBalance(ctx context.Context, mu state.Mutable, payer string, amount uint64) error {
	return putUint64(ctx, mu, BalanceKey(payer), amount)
}

func (*Native) Execute(ctx context.Context, mu state.Mutable, tx *payload.Transaction) (*Result, error) {
	if tx.Gas > MaxTxGas {
		return &Result{Status: ResourceExceeded}, nil
	}

	payer := tx.Sponsor()
	nonce, err := getUint64(ctx, mu, nonceKey(payer))
	if err != nil {
		return nil, err
	}
	if tx.Nonce < nonce {
		return &Result{Status: Reverted, Reason: ErrNonceTooLow.Error()}, nil
	}

	balance, err := getUint64(ctx, mu, BalanceKey(payer))
	if err != nil {
		return nil, err
	}
	if balance < tx.Fee {
		return &Result{Status: Reverted, Reason: "insufficient balance"}, nil
	}

	remaining, err := math.Sub(balance, tx.Fee)
	if err != nil {
		return nil, err
	}
	if err := putUint64(ctx, mu, BalanceKey(payer), remaining); err != nil {
		return nil, err
	}
	if err := putUint64(ctx, mu, nonceKey(payer), tx.Nonce+1); err != nil {
		return nil, err
	}
	return &Result{
		Status:  Applied,
		GasUsed: tx.Gas,
		Fee:     tx.Fee,
	}, nil
}
