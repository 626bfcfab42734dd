// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

const (
	Name            = "payloadd"
	JSONRPCEndpoint = "/payloadapi"
)
