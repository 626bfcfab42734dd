// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import "time"

type Config struct {
	// BuildInterval is how often idle jobs are stepped.
	BuildInterval time.Duration `json:"buildInterval"`

	// AdvanceTimeout bounds a single background improvement step.
	AdvanceTimeout time.Duration `json:"advanceTimeout"`

	// ResolveTimeout bounds the final best-effort step performed when a
	// payload is resolved while its job is still active.
	ResolveTimeout time.Duration `json:"resolveTimeout"`

	// StallWindow force-exhausts a job that has not improved its best
	// payload within the window.
	StallWindow time.Duration `json:"stallWindow"`

	// BuildBudget is the absolute lifetime of a job. Once exceeded, the
	// job is exhausted regardless of progress.
	BuildBudget time.Duration `json:"buildBudget"`

	// RetentionWindow is how long terminal entries remain queryable
	// before eviction.
	RetentionWindow time.Duration `json:"retentionWindow"`

	// MaxRetainedEntries caps terminal entries kept in memory. Oldest
	// are evicted first. Entries still building are never evicted.
	MaxRetainedEntries int `json:"maxRetainedEntries"`

	// CommandBacklog sizes the handle command channel.
	CommandBacklog int `json:"commandBacklog"`
}

func NewDefaultConfig() Config {
	return Config{
		BuildInterval:      100 * time.Millisecond,
		AdvanceTimeout:     50 * time.Millisecond,
		ResolveTimeout:     50 * time.Millisecond,
		StallWindow:        2 * time.Second,
		BuildBudget:        12 * time.Second,
		RetentionWindow:    time.Minute,
		MaxRetainedEntries: 256,
		CommandBacklog:     128,
	}
}
