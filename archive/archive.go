// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package archive

import (
	"context"
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/forgelabs/payloadd/payload"
)

type Config struct {
	// Sync forces archived payloads to disk before Archive returns.
	// Archival is off the hot path, so durability is the default.
	Sync bool `json:"sync"`
}

func NewDefaultConfig() Config {
	return Config{Sync: true}
}

// Archive is a durable, append-mostly store of resolved payloads that
// aged out of the in-memory store. Payloads are keyed by id and never
// modified after archival.
type Archive struct {
	log     logging.Logger
	tracer  trace.Tracer
	cfg     Config
	metrics *archiveMetrics

	registry *prometheus.Registry
	db       *pebble.DB
}

func New(log logging.Logger, tracer trace.Tracer, dir string, cfg Config) (*Archive, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	log.Info("archive opened", zap.String("dir", dir), zap.Bool("sync", cfg.Sync))
	return &Archive{
		log:      log,
		tracer:   tracer,
		cfg:      cfg,
		metrics:  metrics,
		registry: registry,
		db:       db,
	}, nil
}

func (a *Archive) Metrics() *prometheus.Registry {
	return a.registry
}

// Archive persists [p]. Re-archiving the same payload is a no-op
// overwrite, so eviction retries are safe.
func (a *Archive) Archive(ctx context.Context, p *payload.Payload) error {
	_, span := a.tracer.Start(ctx, "Archive.Archive")
	defer span.End()

	b, err := p.Bytes()
	if err != nil {
		return err
	}
	opts := pebble.NoSync
	if a.cfg.Sync {
		opts = pebble.Sync
	}
	start := time.Now()
	if err := a.db.Set(p.ID[:], b, opts); err != nil {
		return err
	}
	a.metrics.payloadsArchived.Inc()
	a.metrics.bytesArchived.Add(float64(len(b)))
	a.metrics.writeLatency.Observe(float64(time.Since(start)))
	return nil
}

// Get returns the archived payload for [id], or [database.ErrNotFound].
func (a *Archive) Get(ctx context.Context, id ids.ID) (*payload.Payload, error) {
	_, span := a.tracer.Start(ctx, "Archive.Get")
	defer span.End()

	start := time.Now()
	b, closer, err := a.db.Get(id[:])
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closer.Close()
	}()
	a.metrics.readLatency.Observe(float64(time.Since(start)))
	return payload.Unmarshal(b)
}

// Has reports whether [id] is archived.
func (a *Archive) Has(ctx context.Context, id ids.ID) (bool, error) {
	_, err := a.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}
