// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

func ToID(bytes []byte) ids.ID {
	return ids.ID(hashing.ComputeHash256Array(bytes))
}

// UnixRMilli returns the current unix time in milliseconds, rounded
// down to the nearest [t] milliseconds.
func UnixRMilli(now, t int64) int64 {
	if now < 0 {
		now = time.Now().UnixMilli()
	}
	return now - now%t
}

func Repeat[T any](v T, n int) []T {
	arr := make([]T, n)
	for i := 0; i < n; i++ {
		arr[i] = v
	}
	return arr
}
