// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"errors"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/forgelabs/payloadd/utils"
)

const maxTransactionSize = 1 << 20 // 1 MiB

var ErrExtraBytes = errors.New("transaction has extra bytes")

// Transaction is an opaque candidate for inclusion in a payload. The
// builder never interprets [Data]; execution semantics belong to the
// configured executor.
type Transaction struct {
	Payer    ids.ShortID `json:"payer"`
	Nonce    uint64      `json:"nonce"`
	Gas      uint64      `json:"gas"`
	Fee      uint64      `json:"fee"`
	Deadline int64       `json:"deadline"` // unix ms
	Data     []byte      `json:"data"`

	bytes []byte
	id    ids.ID
}

func NewTransaction(
	payer ids.ShortID,
	nonce uint64,
	gas uint64,
	fee uint64,
	deadline int64,
	data []byte,
) *Transaction {
	tx := &Transaction{
		Payer:    payer,
		Nonce:    nonce,
		Gas:      gas,
		Fee:      fee,
		Deadline: deadline,
		Data:     data,
	}
	tx.initialize()
	return tx
}

func (t *Transaction) initialize() {
	p := wrappers.Packer{MaxSize: maxTransactionSize, Bytes: make([]byte, 0, 64+len(t.Data))}
	t.marshal(&p)
	t.bytes = p.Bytes
	t.id = utils.ToID(t.bytes)
}

func (t *Transaction) marshal(p *wrappers.Packer) {
	p.PackFixedBytes(t.Payer[:])
	p.PackLong(t.Nonce)
	p.PackLong(t.Gas)
	p.PackLong(t.Fee)
	p.PackLong(uint64(t.Deadline))
	p.PackBytes(t.Data)
}

// ID returns the digest of the canonical encoding of t.
func (t *Transaction) ID() ids.ID { return t.id }

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return len(t.bytes) }

// Sponsor identifies the account paying for t, as required by the mempool.
func (t *Transaction) Sponsor() string { return string(t.Payer[:]) }

// UnitPrice orders transactions in the mempool. Higher fee yield is better.
func (t *Transaction) UnitPrice() uint64 { return t.Fee }

// Expiry is the unix ms time after which t can no longer be included.
func (t *Transaction) Expiry() int64 { return t.Deadline }

// MarshalTransaction appends the canonical encoding of t to [p].
func (t *Transaction) MarshalTransaction(p *wrappers.Packer) {
	t.marshal(p)
}

// ParseTransaction decodes a standalone canonical encoding, rejecting
// trailing bytes.
func ParseTransaction(b []byte) (*Transaction, error) {
	p := wrappers.Packer{MaxSize: maxTransactionSize, Bytes: b}
	tx, err := UnmarshalTransaction(&p)
	if err != nil {
		return nil, err
	}
	if p.Offset != len(b) {
		return nil, ErrExtraBytes
	}
	return tx, nil
}

// UnmarshalTransaction reads one transaction from [p].
func UnmarshalTransaction(p *wrappers.Packer) (*Transaction, error) {
	tx := &Transaction{}
	copy(tx.Payer[:], p.UnpackFixedBytes(ids.ShortIDLen))
	tx.Nonce = p.UnpackLong()
	tx.Gas = p.UnpackLong()
	tx.Fee = p.UnpackLong()
	tx.Deadline = int64(p.UnpackLong())
	tx.Data = p.UnpackBytes()
	if p.Errored() {
		return nil, p.Err
	}
	tx.initialize()
	return tx, nil
}
