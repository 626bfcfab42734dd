// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/forgelabs/payloadd/utils"
)

const maxAttributesSize = 1 << 22 // generous bound on forced inclusions

type Withdrawal struct {
	Index     uint64      `json:"index"`
	Validator uint64      `json:"validator"`
	Address   ids.ShortID `json:"address"`
	Amount    uint64      `json:"amount"`
}

// Attributes describe one build request. They are immutable once handed to
// the scheduler; the derived ID is the identity of the build.
type Attributes struct {
	Parent       ids.ID      `json:"parent"`
	Timestamp    int64       `json:"timestamp"` // unix ms
	FeeRecipient ids.ShortID `json:"feeRecipient"`
	Random       ids.ID      `json:"random"`
	GasLimit     uint64      `json:"gasLimit"`

	Withdrawals []*Withdrawal `json:"withdrawals"`

	// Forced transactions must be included verbatim, before anything from
	// the pool. Failure to apply one fails the whole build.
	Forced []*Transaction `json:"forced"`
}

// ID derives the payload identifier from the canonical encoding of a.
// Identical attributes always collide, which is what makes duplicate
// start requests idempotent.
func (a *Attributes) ID() ids.ID {
	p := wrappers.Packer{MaxSize: maxAttributesSize, Bytes: make([]byte, 0, 256)}
	p.PackFixedBytes(a.Parent[:])
	p.PackLong(uint64(a.Timestamp))
	p.PackFixedBytes(a.FeeRecipient[:])
	p.PackFixedBytes(a.Random[:])
	p.PackLong(a.GasLimit)
	p.PackInt(uint32(len(a.Withdrawals)))
	for _, w := range a.Withdrawals {
		p.PackLong(w.Index)
		p.PackLong(w.Validator)
		p.PackFixedBytes(w.Address[:])
		p.PackLong(w.Amount)
	}
	p.PackInt(uint32(len(a.Forced)))
	for _, tx := range a.Forced {
		id := tx.ID()
		p.PackFixedBytes(id[:])
	}
	return utils.ToID(p.Bytes)
}
