// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const maxPayloadSize = 1 << 23

// Payload is a candidate block body plus the execution metadata the
// consumer needs to judge it.
type Payload struct {
	ID           ids.ID      `json:"id"`
	Parent       ids.ID      `json:"parent"`
	Timestamp    int64       `json:"timestamp"`
	FeeRecipient ids.ShortID `json:"feeRecipient"`
	StateRoot    ids.ID      `json:"stateRoot"`

	GasUsed uint64 `json:"gasUsed"`
	Fees    uint64 `json:"fees"`

	Txs         []*Transaction `json:"txs"`
	Withdrawals []*Withdrawal  `json:"withdrawals"`

	// BuiltAt breaks score ties: of two equally profitable candidates the
	// earlier one is kept.
	BuiltAt int64 `json:"builtAt"` // unix ms
}

// Better reports whether p is a strict improvement over [o]. A nil [o]
// is always improved upon. Equal fee yield is not an improvement, so the
// incumbent candidate wins ties.
func (p *Payload) Better(o *Payload) bool {
	if o == nil {
		return true
	}
	return p.Fees > o.Fees
}

func (p *Payload) Bytes() ([]byte, error) {
	pk := wrappers.Packer{MaxSize: maxPayloadSize, Bytes: make([]byte, 0, 512)}
	pk.PackFixedBytes(p.ID[:])
	pk.PackFixedBytes(p.Parent[:])
	pk.PackLong(uint64(p.Timestamp))
	pk.PackFixedBytes(p.FeeRecipient[:])
	pk.PackFixedBytes(p.StateRoot[:])
	pk.PackLong(p.GasUsed)
	pk.PackLong(p.Fees)
	pk.PackInt(uint32(len(p.Txs)))
	for _, tx := range p.Txs {
		tx.MarshalTransaction(&pk)
	}
	pk.PackInt(uint32(len(p.Withdrawals)))
	for _, w := range p.Withdrawals {
		pk.PackLong(w.Index)
		pk.PackLong(w.Validator)
		pk.PackFixedBytes(w.Address[:])
		pk.PackLong(w.Amount)
	}
	pk.PackLong(uint64(p.BuiltAt))
	return pk.Bytes, pk.Err
}

func Unmarshal(b []byte) (*Payload, error) {
	pk := wrappers.Packer{MaxSize: maxPayloadSize, Bytes: b}
	p := &Payload{}
	copy(p.ID[:], pk.UnpackFixedBytes(ids.IDLen))
	copy(p.Parent[:], pk.UnpackFixedBytes(ids.IDLen))
	p.Timestamp = int64(pk.UnpackLong())
	copy(p.FeeRecipient[:], pk.UnpackFixedBytes(ids.ShortIDLen))
	copy(p.StateRoot[:], pk.UnpackFixedBytes(ids.IDLen))
	p.GasUsed = pk.UnpackLong()
	p.Fees = pk.UnpackLong()
	txCount := pk.UnpackInt()
	if pk.Errored() {
		return nil, pk.Err
	}
	p.Txs = make([]*Transaction, 0, txCount)
	for i := uint32(0); i < txCount; i++ {
		tx, err := UnmarshalTransaction(&pk)
		if err != nil {
			return nil, err
		}
		p.Txs = append(p.Txs, tx)
	}
	wCount := pk.UnpackInt()
	if pk.Errored() {
		return nil, pk.Err
	}
	p.Withdrawals = make([]*Withdrawal, 0, wCount)
	for i := uint32(0); i < wCount; i++ {
		w := &Withdrawal{}
		w.Index = pk.UnpackLong()
		w.Validator = pk.UnpackLong()
		copy(w.Address[:], pk.UnpackFixedBytes(ids.ShortIDLen))
		w.Amount = pk.UnpackLong()
		p.Withdrawals = append(p.Withdrawals, w)
	}
	p.BuiltAt = int64(pk.UnpackLong())
	if pk.Errored() {
		return nil, pk.Err
	}
	return p, nil
}
