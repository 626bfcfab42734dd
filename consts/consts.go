// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	Name    = "payloadd"
	Version = "0.0.1"

	IDLen     = 32
	Uint64Len = 8

	MaxUint64 = ^uint64(0)
)
