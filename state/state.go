// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
)

// We use string keys because values are often staged in maps before being
// flushed to a database. This allows us to avoid casting back and forth.
type Immutable interface {
	Get(ctx context.Context, key string) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
