// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package archive

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type archiveMetrics struct {
	payloadsArchived prometheus.Counter
	bytesArchived    prometheus.Counter

	writeLatency metric.Averager
	readLatency  metric.Averager
}

func newMetrics() (*prometheus.Registry, *archiveMetrics, error) {
	r := prometheus.NewRegistry()

	writeLatency, err := metric.NewAverager(
		"archive_write_latency",
		"time spent writing a payload to disk",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	readLatency, err := metric.NewAverager(
		"archive_read_latency",
		"time spent reading a payload from disk",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &archiveMetrics{
		payloadsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "archive",
			Name:      "payloads_archived",
			Help:      "number of payloads archived",
		}),
		bytesArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "archive",
			Name:      "bytes_archived",
			Help:      "bytes of payload data archived",
		}),
		writeLatency: writeLatency,
		readLatency:  readLatency,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.payloadsArchived),
		r.Register(m.bytesArchived),
	)
	return r, m, errs.Err
}
