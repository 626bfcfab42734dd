// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type schedulerMetrics struct {
	jobsStarted   prometheus.Counter
	jobsResolved  prometheus.Counter
	jobsCancelled prometheus.Counter
	jobsFailed    prometheus.Counter
	jobsStalled   prometheus.Counter

	improvements    prometheus.Counter
	poolExhausted   prometheus.Counter
	entriesEvicted  prometheus.Counter
	outcomesDropped prometheus.Counter

	activeJobs prometheus.Gauge

	advanceDuration metric.Averager
}

func newMetrics() (*prometheus.Registry, *schedulerMetrics, error) {
	r := prometheus.NewRegistry()

	advanceDuration, err := metric.NewAverager(
		"scheduler_advance_duration",
		"time spent in a single improvement step",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &schedulerMetrics{
		jobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "jobs_started",
			Help:      "number of build jobs started",
		}),
		jobsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "jobs_resolved",
			Help:      "number of build jobs resolved",
		}),
		jobsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "jobs_cancelled",
			Help:      "number of build jobs cancelled",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "jobs_failed",
			Help:      "number of build jobs failed",
		}),
		jobsStalled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "jobs_stalled",
			Help:      "number of build jobs force-exhausted by stall or deadline",
		}),
		improvements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "improvements",
			Help:      "number of accepted best payload improvements",
		}),
		poolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "pool_exhausted",
			Help:      "number of jobs that drained their transaction source",
		}),
		entriesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "entries_evicted",
			Help:      "number of terminal entries evicted from the store",
		}),
		outcomesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "outcomes_dropped",
			Help:      "number of step outcomes discarded after job teardown",
		}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "active_jobs",
			Help:      "number of jobs currently building",
		}),
		advanceDuration: advanceDuration,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.jobsStarted),
		r.Register(m.jobsResolved),
		r.Register(m.jobsCancelled),
		r.Register(m.jobsFailed),
		r.Register(m.jobsStalled),
		r.Register(m.improvements),
		r.Register(m.poolExhausted),
		r.Register(m.entriesEvicted),
		r.Register(m.outcomesDropped),
		r.Register(m.activeJobs),
	)
	return r, m, errs.Err
}
