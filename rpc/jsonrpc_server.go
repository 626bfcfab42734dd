// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/forgelabs/payloadd/payload"
)

type JSONRPCServer struct {
	b Backend
}

func NewJSONRPCServer(b Backend) *JSONRPCServer {
	return &JSONRPCServer{b}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (*JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	reply.Success = true
	return nil
}

type SubmitTransactionArgs struct {
	// Tx is the canonical encoding.
	Tx []byte `json:"tx"`
}

type SubmitTransactionReply struct {
	TxID ids.ID `json:"txId"`
}

func (j *JSONRPCServer) SubmitTransaction(
	req *http.Request,
	args *SubmitTransactionArgs,
	reply *SubmitTransactionReply,
) error {
	ctx, span := j.b.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTransaction")
	defer span.End()

	tx, err := payload.ParseTransaction(args.Tx)
	if err != nil {
		return fmt.Errorf("%w: unable to parse transaction", err)
	}
	if err := j.b.SubmitTransaction(ctx, tx); err != nil {
		return err
	}
	reply.TxID = tx.ID()
	return nil
}

type StartBuildArgs struct {
	Parent       ids.ID      `json:"parent"`
	Timestamp    int64       `json:"timestamp"`
	FeeRecipient ids.ShortID `json:"feeRecipient"`
	Random       ids.ID      `json:"random"`
	GasLimit     uint64      `json:"gasLimit"`

	Withdrawals []*payload.Withdrawal `json:"withdrawals"`

	// Forced transactions travel in their canonical encoding.
	Forced [][]byte `json:"forced"`
}

type StartBuildReply struct {
	PayloadID ids.ID `json:"payloadId"`
}

func (j *JSONRPCServer) StartBuild(
	req *http.Request,
	args *StartBuildArgs,
	reply *StartBuildReply,
) error {
	ctx, span := j.b.Tracer().Start(req.Context(), "JSONRPCServer.StartBuild")
	defer span.End()

	forced := make([]*payload.Transaction, 0, len(args.Forced))
	for i, b := range args.Forced {
		tx, err := payload.ParseTransaction(b)
		if err != nil {
			return fmt.Errorf("%w: unable to parse forced transaction %d", err, i)
		}
		forced = append(forced, tx)
	}

	id, err := j.b.StartBuild(ctx, &payload.Attributes{
		Parent:       args.Parent,
		Timestamp:    args.Timestamp,
		FeeRecipient: args.FeeRecipient,
		Random:       args.Random,
		GasLimit:     args.GasLimit,
		Withdrawals:  args.Withdrawals,
		Forced:       forced,
	})
	if err != nil {
		return err
	}
	reply.PayloadID = id
	return nil
}

type PayloadArgs struct {
	PayloadID ids.ID `json:"payloadId"`
}

type PayloadReply struct {
	// Payload is the canonical encoding, empty when no candidate exists
	// yet.
	Payload []byte `json:"payload"`
	Status  string `json:"status"`
}

func (r *PayloadReply) pack(p *payload.Payload, status fmt.Stringer) error {
	r.Status = status.String()
	if p == nil {
		return nil
	}
	b, err := p.Bytes()
	if err != nil {
		return err
	}
	r.Payload = b
	return nil
}

func (j *JSONRPCServer) GetPayload(
	req *http.Request,
	args *PayloadArgs,
	reply *PayloadReply,
) error {
	ctx, span := j.b.Tracer().Start(req.Context(), "JSONRPCServer.GetPayload")
	defer span.End()

	p, status, err := j.b.GetPayload(ctx, args.PayloadID)
	if err != nil {
		return err
	}
	return reply.pack(p, status)
}

func (j *JSONRPCServer) BestSoFar(
	req *http.Request,
	args *PayloadArgs,
	reply *PayloadReply,
) error {
	ctx, span := j.b.Tracer().Start(req.Context(), "JSONRPCServer.BestSoFar")
	defer span.End()

	p, status, err := j.b.BestSoFar(ctx, args.PayloadID)
	if err != nil {
		return err
	}
	return reply.pack(p, status)
}

type CancelBuildReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) CancelBuild(
	req *http.Request,
	args *PayloadArgs,
	reply *CancelBuildReply,
) error {
	ctx, span := j.b.Tracer().Start(req.Context(), "JSONRPCServer.CancelBuild")
	defer span.End()

	if err := j.b.CancelBuild(ctx, args.PayloadID); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type ArchivedPayloadReply struct {
	Payload []byte `json:"payload"`
}

func (j *JSONRPCServer) ArchivedPayload(
	req *http.Request,
	args *PayloadArgs,
	reply *ArchivedPayloadReply,
) error {
	ctx, span := j.b.Tracer().Start(req.Context(), "JSONRPCServer.ArchivedPayload")
	defer span.End()

	p, err := j.b.ArchivedPayload(ctx, args.PayloadID)
	if err != nil {
		return err
	}
	b, err := p.Bytes()
	if err != nil {
		return err
	}
	reply.Payload = b
	return nil
}
