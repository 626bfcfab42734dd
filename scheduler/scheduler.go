// Copyright (C) 2024, Forge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/forgelabs/payloadd/eheap"
	"github.com/forgelabs/payloadd/event"
	"github.com/forgelabs/payloadd/job"
	"github.com/forgelabs/payloadd/payload"
	"github.com/forgelabs/payloadd/store"
)

// Event is emitted to subscribers whenever an entry's best payload is
// replaced or the entry reaches a terminal status.
type Event struct {
	ID      ids.ID
	Status  store.Status
	Payload *payload.Payload
}

// Archiver receives resolved payloads as they are evicted from the
// in-memory store.
type Archiver interface {
	Archive(ctx context.Context, p *payload.Payload) error
}

// activeJob is the loop-owned state for one building payload. All fields
// are read and written only by the event loop goroutine.
type activeJob struct {
	j job.Job

	deadline     int64 // unix ms, absolute build budget
	lastImproved int64 // unix ms

	// inflight guards against stepping a job while a previous step is
	// still running on a background goroutine.
	inflight bool
}

// retainedEntry schedules eviction of a terminal store entry.
type retainedEntry struct {
	id     ids.ID
	expiry int64
}

func (r *retainedEntry) GetID() ids.ID    { return r.id }
func (r *retainedEntry) GetExpiry() int64 { return r.expiry }

// Scheduler owns every build job and the best-payload store. All state
// transitions happen on the single [Run] goroutine; callers interact
// through a [Handle], which turns method calls into messages.
type Scheduler struct {
	log     logging.Logger
	tracer  trace.Tracer
	cfg     Config
	gen     job.Generator
	metrics *schedulerMetrics

	registry *prometheus.Registry
	archiver Archiver
	subs     []event.Subscription[Event]

	store    *store.Store
	jobs     map[ids.ID]*activeJob
	retained *eheap.ExpiryHeap[*retainedEntry]

	cmds     chan command
	advanced chan advanceOutcome

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type Option func(*Scheduler)

// WithArchiver copies resolved payloads to [a] when they age out of the
// store.
func WithArchiver(a Archiver) Option {
	return func(s *Scheduler) { s.archiver = a }
}

// WithSubscriptions registers sinks for [Event] notifications.
func WithSubscriptions(subs ...event.Subscription[Event]) Option {
	return func(s *Scheduler) { s.subs = append(s.subs, subs...) }
}

func New(
	log logging.Logger,
	tracer trace.Tracer,
	gen job.Generator,
	cfg Config,
	opts ...Option,
) (*Scheduler, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		log:      log,
		tracer:   tracer,
		cfg:      cfg,
		gen:      gen,
		metrics:  metrics,
		registry: registry,
		store:    store.New(tracer),
		jobs:     map[ids.ID]*activeJob{},
		retained: eheap.New[*retainedEntry](),
		cmds:     make(chan command, cfg.CommandBacklog),
		advanced: make(chan advanceOutcome, cfg.CommandBacklog),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handle returns a client for this scheduler. Handles are cheap and
// safe to share; commands from a single handle are processed in the
// order they were sent.
func (s *Scheduler) Handle() *Handle {
	return &Handle{cmds: s.cmds, stop: s.stop}
}

// Metrics exposes the scheduler's registry for serving.
func (s *Scheduler) Metrics() *prometheus.Registry {
	return s.registry
}

// Run executes the event loop until [ctx] is cancelled or [Stop] is
// called. It must be invoked exactly once.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.BuildInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-s.cmds:
			s.processCommand(ctx, cmd)
		case out := <-s.advanced:
			s.applyOutcome(ctx, out)
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.shutdown()
			return
		case <-s.stop:
			s.shutdown()
			return
		}
	}
}

// Stop signals the event loop to exit and waits for it to drain.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Scheduler) shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })
	for id, aj := range s.jobs {
		aj.j.Cancel()
		delete(s.jobs, id)
	}
	s.metrics.activeJobs.Set(0)
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) processCommand(ctx context.Context, cmd command) {
	switch c := cmd.(type) {
	case *startCommand:
		id, err := s.start(ctx, c.attrs)
		c.resp <- startResult{id: id, err: err}
	case *resolveCommand:
		c.resp <- s.resolve(ctx, c.id)
	case *cancelCommand:
		c.resp <- s.cancel(ctx, c.id)
	case *bestCommand:
		c.resp <- s.lookup(ctx, c.id)
	default:
		s.log.Error("unknown command", zap.Any("command", cmd))
	}
}

// start registers a job for [attrs]. Identical attributes map to the
// same id, so repeated starts are idempotent while the entry lives.
func (s *Scheduler) start(ctx context.Context, attrs *payload.Attributes) (ids.ID, error) {
	ctx, span := s.tracer.Start(ctx, "Scheduler.start")
	defer span.End()

	id := attrs.ID()
	if _, ok := s.jobs[id]; ok {
		return id, nil
	}
	if _, ok := s.store.Get(ctx, id); ok {
		return id, nil
	}

	j, err := s.gen.NewJob(ctx, attrs)
	if err != nil {
		return ids.Empty, err
	}

	now := time.Now().UnixMilli()
	aj := &activeJob{
		j:            j,
		deadline:     now + s.cfg.BuildBudget.Milliseconds(),
		lastImproved: now,
	}
	s.store.Register(ctx, id)
	s.jobs[id] = aj
	s.metrics.jobsStarted.Inc()
	s.metrics.activeJobs.Set(float64(len(s.jobs)))
	s.log.Debug("job started",
		zap.Stringer("payloadID", id),
		zap.Stringer("parent", attrs.Parent),
	)

	// First candidate should exist as soon as possible.
	s.spawnAdvance(ctx, id, aj)
	return id, nil
}

// spawnAdvance runs one improvement step on a background goroutine and
// folds the outcome back into the loop. At most one step per job is in
// flight at a time.
func (s *Scheduler) spawnAdvance(ctx context.Context, id ids.ID, aj *activeJob) {
	if aj.inflight {
		return
	}
	aj.inflight = true
	j := aj.j
	go func() {
		actx, cancel := context.WithTimeout(ctx, s.cfg.AdvanceTimeout)
		defer cancel()

		start := time.Now()
		res := j.Advance(actx)
		select {
		case s.advanced <- advanceOutcome{id: id, result: res, elapsed: time.Since(start)}:
		case <-s.stop:
		}
	}()
}

func (s *Scheduler) applyOutcome(ctx context.Context, out advanceOutcome) {
	aj, ok := s.jobs[out.id]
	if !ok {
		// Job was resolved or cancelled while the step ran. Its result
		// must not resurface.
		s.metrics.outcomesDropped.Inc()
		return
	}
	aj.inflight = false
	s.metrics.advanceDuration.Observe(float64(out.elapsed))

	switch out.result.Kind {
	case job.StepImproved:
		if s.store.Put(ctx, out.id, out.result.Payload) {
			aj.lastImproved = time.Now().UnixMilli()
			s.metrics.improvements.Inc()
			s.notify(ctx, Event{ID: out.id, Status: store.Building, Payload: out.result.Payload})
		}
	case job.StepNoImprovement:
	case job.StepExhausted:
		s.metrics.poolExhausted.Inc()
		s.finish(ctx, out.id, aj, store.Resolved, nil)
	case job.StepFailed:
		s.metrics.jobsFailed.Inc()
		s.log.Warn("job failed",
			zap.Stringer("payloadID", out.id),
			zap.Error(out.result.Err),
		)
		s.finish(ctx, out.id, aj, store.Failed, out.result.Err)
	}
}

// tick evicts aged entries, enforces stall and deadline limits, and
// steps every idle job.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	nowMilli := now.UnixMilli()

	for _, r := range s.retained.SetMin(nowMilli) {
		s.evict(ctx, r.id)
	}

	for id, aj := range s.jobs {
		over := nowMilli > aj.deadline
		stalled := nowMilli-aj.lastImproved > s.cfg.StallWindow.Milliseconds()
		if over || stalled {
			// A hung in-flight step is abandoned here too; its eventual
			// outcome is dropped in [applyOutcome].
			s.metrics.jobsStalled.Inc()
			s.log.Debug("job force-exhausted",
				zap.Stringer("payloadID", id),
				zap.Bool("overDeadline", over),
				zap.Bool("stalled", stalled),
			)
			s.finish(ctx, id, aj, store.Resolved, nil)
			continue
		}
		if !aj.inflight {
			s.spawnAdvance(ctx, id, aj)
		}
	}
}

// finish tears down a job and freezes its entry at [status]. The best
// payload accumulated so far is retained until eviction.
func (s *Scheduler) finish(ctx context.Context, id ids.ID, aj *activeJob, status store.Status, reason error) {
	aj.j.Cancel()
	delete(s.jobs, id)
	s.metrics.activeJobs.Set(float64(len(s.jobs)))

	if !s.store.Finalize(ctx, id, status, reason) {
		return
	}
	s.retain(ctx, id)

	entry, _ := s.store.Get(ctx, id)
	s.notify(ctx, Event{ID: id, Status: status, Payload: entry.Payload})
}

// retain schedules the terminal entry for eviction and enforces the
// retained-entry cap.
func (s *Scheduler) retain(ctx context.Context, id ids.ID) {
	s.retained.Add(&retainedEntry{
		id:     id,
		expiry: time.Now().UnixMilli() + s.cfg.RetentionWindow.Milliseconds(),
	})
	for s.retained.Len() > s.cfg.MaxRetainedEntries {
		r, ok := s.retained.PopMin()
		if !ok {
			break
		}
		s.evict(ctx, r.id)
	}
}

func (s *Scheduler) evict(ctx context.Context, id ids.ID) {
	entry, ok := s.store.Get(ctx, id)
	if ok && entry.Status == store.Resolved && entry.Payload != nil && s.archiver != nil {
		if err := s.archiver.Archive(ctx, entry.Payload); err != nil {
			s.log.Error("unable to archive payload",
				zap.Stringer("payloadID", id),
				zap.Error(err),
			)
		}
	}
	s.store.Remove(ctx, id)
	s.retained.Remove(id)
	s.metrics.entriesEvicted.Inc()
}

// resolve returns the best payload for [id] and finalizes its job. If
// the job is still active and idle, one last bounded step runs
// synchronously so the caller gets the freshest candidate.
func (s *Scheduler) resolve(ctx context.Context, id ids.ID) lookupResult {
	ctx, span := s.tracer.Start(ctx, "Scheduler.resolve")
	defer span.End()

	if aj, ok := s.jobs[id]; ok {
		s.drainInflight(ctx, aj)
		if _, ok := s.jobs[id]; ok && !aj.inflight {
			actx, cancel := context.WithTimeout(ctx, s.cfg.ResolveTimeout)
			res := aj.j.Advance(actx)
			cancel()
			switch res.Kind {
			case job.StepImproved:
				if s.store.Put(ctx, id, res.Payload) {
					s.metrics.improvements.Inc()
				}
			case job.StepFailed:
				s.metrics.jobsFailed.Inc()
				s.finish(ctx, id, aj, store.Failed, res.Err)
			default:
			}
		}
		// Draining or a failed final step may have removed the job.
		if aj, ok := s.jobs[id]; ok {
			s.metrics.jobsResolved.Inc()
			s.finish(ctx, id, aj, store.Resolved, nil)
		}
	}
	return s.lookup(ctx, id)
}

// drainInflight folds queued step outcomes until [aj] has none pending
// or the resolve budget elapses. This keeps a resolve issued right
// after a step was dispatched from missing that step's candidate.
func (s *Scheduler) drainInflight(ctx context.Context, aj *activeJob) {
	if !aj.inflight {
		return
	}
	timer := time.NewTimer(s.cfg.ResolveTimeout)
	defer timer.Stop()
	for aj.inflight {
		select {
		case out := <-s.advanced:
			s.applyOutcome(ctx, out)
		case <-timer.C:
			return
		}
	}
}

func (s *Scheduler) cancel(ctx context.Context, id ids.ID) error {
	ctx, span := s.tracer.Start(ctx, "Scheduler.cancel")
	defer span.End()

	if aj, ok := s.jobs[id]; ok {
		s.metrics.jobsCancelled.Inc()
		s.finish(ctx, id, aj, store.Cancelled, nil)
		return nil
	}
	if _, ok := s.store.Get(ctx, id); ok {
		// Already terminal. Cancellation is idempotent.
		return nil
	}
	return ErrNotFound
}

func (s *Scheduler) lookup(ctx context.Context, id ids.ID) lookupResult {
	entry, ok := s.store.Get(ctx, id)
	if !ok {
		return lookupResult{err: ErrNotFound}
	}
	if entry.Status == store.Failed {
		return lookupResult{status: entry.Status, err: fmt.Errorf("%w: %v", ErrBuildFailed, entry.Reason)}
	}
	if entry.Payload == nil && entry.Status != store.Building {
		return lookupResult{status: entry.Status, err: ErrNoPayload}
	}
	return lookupResult{payload: entry.Payload, status: entry.Status}
}

func (s *Scheduler) notify(ctx context.Context, e Event) {
	if len(s.subs) == 0 {
		return
	}
	if err := event.NotifyAll(ctx, e, s.subs...); err != nil {
		s.log.Error("unable to notify subscribers", zap.Error(err))
	}
}
