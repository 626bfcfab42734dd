// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import "errors"

var (
	// ErrNotFound is returned for operations on an id that was never
	// started or whose entry has been evicted.
	ErrNotFound = errors.New("payload not found")

	// ErrNoPayload is returned when a build terminated without producing
	// any candidate. Distinct from an intentionally empty payload.
	ErrNoPayload = errors.New("no payload available")

	// ErrBuildFailed wraps the reason a build transitioned to Failed.
	ErrBuildFailed = errors.New("build failed")

	// ErrShutdown is returned by handle operations after the scheduler
	// stopped.
	ErrShutdown = errors.New("scheduler shutdown")
)
