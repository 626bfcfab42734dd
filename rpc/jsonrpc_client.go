// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/store"
)

type JSONRPCClient struct {
	requester rpc.EndpointRequester
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	return &JSONRPCClient{requester: rpc.NewEndpointRequester(uri)}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		Name+".ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) SubmitTransaction(
	ctx context.Context,
	tx *payload.Transaction,
) (ids.ID, error) {
	resp := new(SubmitTransactionReply)
	err := cli.requester.SendRequest(ctx,
		Name+".submitTransaction",
		&SubmitTransactionArgs{Tx: tx.Bytes()},
		resp,
	)
	return resp.TxID, err
}

func (cli *JSONRPCClient) StartBuild(
	ctx context.Context,
	attrs *payload.Attributes,
) (ids.ID, error) {
	forced := make([][]byte, 0, len(attrs.Forced))
	for _, tx := range attrs.Forced {
		forced = append(forced, tx.Bytes())
	}
	resp := new(StartBuildReply)
	err := cli.requester.SendRequest(ctx,
		Name+".startBuild",
		&StartBuildArgs{
			Parent:       attrs.Parent,
			Timestamp:    attrs.Timestamp,
			FeeRecipient: attrs.FeeRecipient,
			Random:       attrs.Random,
			GasLimit:     attrs.GasLimit,
			Withdrawals:  attrs.Withdrawals,
			Forced:       forced,
		},
		resp,
	)
	return resp.PayloadID, err
}

func (cli *JSONRPCClient) GetPayload(
	ctx context.Context,
	id ids.ID,
) (*payload.Payload, store.Status, error) {
	return cli.payloadRequest(ctx, Name+".getPayload", id)
}

func (cli *JSONRPCClient) BestSoFar(
	ctx context.Context,
	id ids.ID,
) (*payload.Payload, store.Status, error) {
	return cli.payloadRequest(ctx, Name+".bestSoFar", id)
}

func (cli *JSONRPCClient) CancelBuild(ctx context.Context, id ids.ID) error {
	resp := new(CancelBuildReply)
	return cli.requester.SendRequest(ctx,
		Name+".cancelBuild",
		&PayloadArgs{PayloadID: id},
		resp,
	)
}

func (cli *JSONRPCClient) ArchivedPayload(
	ctx context.Context,
	id ids.ID,
) (*payload.Payload, error) {
	resp := new(ArchivedPayloadReply)
	if err := cli.requester.SendRequest(ctx,
		Name+".archivedPayload",
		&PayloadArgs{PayloadID: id},
		resp,
	); err != nil {
		return nil, err
	}
	return payload.Unmarshal(resp.Payload)
}

func (cli *JSONRPCClient) payloadRequest(
	ctx context.Context,
	method string,
	id ids.ID,
) (*payload.Payload, store.Status, error) {
	resp := new(PayloadReply)
	if err := cli.requester.SendRequest(ctx,
		method,
		&PayloadArgs{PayloadID: id},
		resp,
	); err != nil {
		return nil, 0, err
	}
	status, err := store.ParseStatus(resp.Status)
	if err != nil {
		return nil, 0, err
	}
	if len(resp.Payload) == 0 {
		return nil, status, nil
	}
	p, err := payload.Unmarshal(resp.Payload)
	if err != nil {
		return nil, 0, err
	}
	return p, status, nil
}
