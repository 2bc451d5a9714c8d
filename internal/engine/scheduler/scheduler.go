// Package scheduler implements the incremental, memoized task engine.
//
// Tasks are pulled top-down: requiring a task checks the dependency edges recorded
// at its last execution, in order, and re-executes it only when one of them changed.
package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// TaskStatus represents the state of a task key.
type TaskStatus string

const (
	// StatusUncomputed indicates the task was never computed by this scheduler.
	StatusUncomputed TaskStatus = "Uncomputed"
	// StatusFresh indicates the stored output is up to date.
	StatusFresh TaskStatus = "Fresh"
	// StatusStale indicates a dependency changed since the last execution.
	StatusStale TaskStatus = "Stale"
	// StatusRecomputing indicates the task is currently executing.
	StatusRecomputing TaskStatus = "Recomputing"
	// StatusFailed indicates the last execution failed. Failures are cached.
	StatusFailed TaskStatus = "Failed"
)

const (
	attrStatus     = "sift.status"
	attrCached     = "sift.cached"
	attrGeneration = "sift.generation"
)

// Scheduler owns the incremental state of a workspace and answers requires.
type Scheduler struct {
	registry *Registry
	store    ports.Store
	stampers map[domain.StampKind]ports.Stamper
	tracer   ports.Tracer
	logger   ports.Logger

	flights  singleflight.Group
	sessions atomic.Uint64

	mu       sync.RWMutex
	statuses map[domain.TaskKey]TaskStatus
	outcomes map[domain.TaskKey]*outcome
}

// New creates a new Scheduler.
func New(
	registry *Registry,
	store ports.Store,
	stampers []ports.Stamper,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	byKind := make(map[domain.StampKind]ports.Stamper, len(stampers))
	for _, st := range stampers {
		byKind[st.Kind()] = st
	}
	return &Scheduler{
		registry: registry,
		store:    store,
		stampers: byKind,
		tracer:   tracer,
		logger:   logger,
		statuses: make(map[domain.TaskKey]TaskStatus),
		outcomes: make(map[domain.TaskKey]*outcome),
	}
}

// Status returns the current status of the task key.
func (s *Scheduler) Status(key domain.TaskKey) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.statuses[key]; ok {
		return status
	}
	return StatusUncomputed
}

func (s *Scheduler) updateStatus(key domain.TaskKey, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[key] = status
}

// Session is one top-level build generation. Within a session every key is
// checked at most once; later requires return the memoized outcome.
type Session struct {
	s       *Scheduler
	id      uint64
	noCache bool

	mu       sync.Mutex
	done     map[domain.TaskKey]*outcome
	executed []domain.TaskKey
	reused   int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNoCache makes the session re-execute every task it requires once,
// ignoring stored entries. The results are still stored.
func WithNoCache() SessionOption {
	return func(sess *Session) {
		sess.noCache = true
	}
}

// NewSession starts a new build generation.
func (s *Scheduler) NewSession(opts ...SessionOption) *Session {
	sess := &Session{
		s:    s,
		id:   s.sessions.Add(1),
		done: make(map[domain.TaskKey]*outcome),
	}
	for _, opt := range opts {
		opt(sess)
	}
	return sess
}

// ID returns the sequence number of the session within its scheduler.
func (sess *Session) ID() uint64 {
	return sess.id
}

// Executed returns the keys the session executed, in completion order.
func (sess *Session) Executed() []domain.TaskKey {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return slices.Clone(sess.executed)
}

// Reused returns the number of keys the session found fresh in the store.
func (sess *Session) Reused() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.reused
}

func (sess *Session) lookup(key domain.TaskKey) (*outcome, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	o, ok := sess.done[key]
	return o, ok
}

func (sess *Session) remember(key domain.TaskKey, o *outcome, executed bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, ok := sess.done[key]; ok {
		return
	}
	sess.done[key] = o
	if executed {
		sess.executed = append(sess.executed, key)
	} else {
		sess.reused++
	}
}

// Build requires def(input) as a top-level task of the session.
// A failed task is returned as a *TaskFailure; any other error is an engine fault.
func Build[I, O any](ctx context.Context, sess *Session, def *TaskDef[I, O], input I) (O, error) {
	var zero O
	key, err := def.Key(input)
	if err != nil {
		return zero, fault(err)
	}
	o, err := sess.s.require(ctx, sess, key, nil)
	if err != nil {
		return zero, err
	}
	return resolve(def, o)
}

// outcome is the in-memory view of a stored entry. It keeps the decoded output
// so every require of an unchanged key observes the same value.
type outcome struct {
	key        domain.TaskKey
	output     []byte
	failure    string
	stamp      domain.Stamp
	generation uint64

	once     sync.Once
	value    any
	hasValue bool
	err      error
}

func newOutcome(entry *domain.StoreEntry) *outcome {
	return &outcome{
		key:        entry.Key,
		output:     entry.Output,
		failure:    entry.Failure,
		stamp:      outputStamp(entry.Output, entry.Failure, entry.Generation),
		generation: entry.Generation,
	}
}

func (o *outcome) decoded(def Definition) (any, error) {
	o.once.Do(func() {
		if o.hasValue {
			return
		}
		o.value, o.err = def.decode(o.output)
	})
	return o.value, o.err
}

func resolve[I, O any](def *TaskDef[I, O], o *outcome) (O, error) {
	var zero O
	if o.failure != "" {
		return zero, &TaskFailure{Key: o.key, Message: o.failure}
	}
	v, err := o.decoded(def)
	if err != nil {
		return zero, err
	}
	out, ok := v.(O)
	if !ok {
		return zero, fault(zerr.With(domain.ErrOutputDecodeFailed, "key", o.key.String()))
	}
	return out, nil
}

// outputStamp fingerprints one execution of a task: its output or failure and
// the generation that produced it. Every re-execution changes the stamp, so the
// dependents of a re-executed task re-execute too.
func outputStamp(output []byte, failure string, generation uint64) domain.Stamp {
	gen := "@" + strconv.FormatUint(generation, 10)
	if failure != "" {
		return domain.Stamp{Kind: domain.StampOutput, Value: "failed:" + strconv.FormatUint(xxhash.Sum64String(failure), 16) + gen}
	}
	return domain.Stamp{Kind: domain.StampOutput, Value: strconv.FormatUint(xxhash.Sum64(output), 16) + gen}
}

func (s *Scheduler) require(ctx context.Context, sess *Session, key domain.TaskKey, caller *frame) (*outcome, error) {
	if err := caller.checkCycle(key); err != nil {
		return nil, err
	}
	if o, ok := sess.lookup(key); ok {
		return o, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fault(err)
	}

	for {
		led := false
		v, err, _ := s.flights.Do(key.String(), func() (any, error) {
			led = true
			if o, ok := sess.lookup(key); ok {
				return o, nil
			}
			o, executed, err := s.build(ctx, sess, &frame{key: key, parent: caller})
			if err != nil {
				return nil, err
			}
			sess.remember(key, o, executed)
			return o, nil
		})
		if err != nil {
			// A build joined from another caller may have been canceled by that
			// caller's context, which says nothing about ours.
			if !led && canceled(err) && ctx.Err() == nil {
				continue
			}
			return nil, err
		}

		o, _ := v.(*outcome)
		sess.remember(key, o, false)
		return o, nil
	}
}

// build brings one key up to date. It reports whether the task was executed.
func (s *Scheduler) build(ctx context.Context, sess *Session, f *frame) (*outcome, bool, error) {
	key := f.key
	def, ok := s.registry.Lookup(key.Kind.String())
	if !ok {
		return nil, false, fault(zerr.With(domain.ErrTaskNotFound, "kind", key.Kind.String()))
	}

	ctx, span := s.tracer.Start(ctx, key.String(), ports.WithTaskKind(def.Kind()))
	defer span.End()

	prev, err := s.store.Get(key)
	if err != nil {
		err = fault(err)
		span.RecordError(err)
		return nil, false, err
	}

	if prev != nil && !sess.noCache {
		fresh, err := s.isFresh(ctx, sess, prev, f)
		if err != nil {
			span.RecordError(err)
			return nil, false, err
		}
		if fresh {
			o := s.reuse(prev)
			s.finish(span, o, true)
			return o, false, nil
		}
		s.updateStatus(key, StatusStale)
	}

	s.updateStatus(key, StatusRecomputing)
	o, err := s.execute(ctx, sess, def, f, prev)
	if err != nil {
		if prev != nil {
			s.updateStatus(key, StatusStale)
		} else {
			s.updateStatus(key, StatusUncomputed)
		}
		span.RecordError(err)
		return nil, false, err
	}
	s.finish(span, o, false)
	return o, true, nil
}

func (s *Scheduler) finish(span ports.Span, o *outcome, cached bool) {
	status := StatusFresh
	if o.failure != "" {
		status = StatusFailed
		span.RecordError(&TaskFailure{Key: o.key, Message: o.failure})
	}
	s.updateStatus(o.key, status)
	span.SetAttribute(attrStatus, string(status))
	span.SetAttribute(attrCached, cached)
	span.SetAttribute(attrGeneration, o.generation)
}

// isFresh walks the recorded edges in order and stops at the first change.
func (s *Scheduler) isFresh(ctx context.Context, sess *Session, entry *domain.StoreEntry, f *frame) (bool, error) {
	for _, edge := range entry.Edges {
		var current domain.Stamp
		switch edge.Kind {
		case domain.EdgeTask:
			if _, ok := s.registry.Lookup(edge.Task.Kind.String()); !ok {
				s.logger.Debug(fmt.Sprintf("%s is stale: %s is no longer defined", entry.Key, edge.Target()))
				return false, nil
			}
			dep, err := s.require(ctx, sess, edge.Task, f)
			if err != nil {
				return false, err
			}
			current = dep.stamp
		case domain.EdgeResource:
			st, err := s.stamp(edge.Resource, edge.Stamp.Kind)
			if err != nil {
				return false, fault(err)
			}
			current = st
		default:
			return false, nil
		}

		if !current.Equal(edge.Stamp) {
			s.logger.Debug(fmt.Sprintf("%s is stale: %s changed", entry.Key, edge.Target()))
			return false, nil
		}
	}
	return true, nil
}

func (s *Scheduler) execute(
	ctx context.Context,
	sess *Session,
	def Definition,
	f *frame,
	prev *domain.StoreEntry,
) (*outcome, error) {
	ec := newExecContext(ctx, sess, f)
	value, data, runErr := def.run(ec, f.key.Input)
	if runErr != nil && IsFault(runErr) {
		return nil, runErr
	}

	entry := &domain.StoreEntry{
		Key:        f.key,
		Output:     data,
		Edges:      ec.recorded(),
		Generation: 1,
		Timestamp:  time.Now(),
	}
	if prev != nil {
		entry.Generation = prev.Generation + 1
	}
	if runErr != nil {
		entry.Output = nil
		entry.Failure = runErr.Error()
		if entry.Failure == "" {
			entry.Failure = domain.ErrTaskFailed.Error()
		}
	}

	if err := s.store.Put(entry); err != nil {
		return nil, fault(err)
	}

	o := newOutcome(entry)
	if runErr == nil {
		o.value, o.hasValue = value, true
	}

	s.mu.Lock()
	s.outcomes[f.key] = o
	s.mu.Unlock()
	return o, nil
}

// reuse returns the in-memory outcome of a fresh entry, keeping the previously
// decoded value when the entry was not re-executed since.
func (s *Scheduler) reuse(entry *domain.StoreEntry) *outcome {
	stamp := outputStamp(entry.Output, entry.Failure, entry.Generation)

	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.outcomes[entry.Key]; ok && o.stamp.Equal(stamp) {
		return o
	}
	o := newOutcome(entry)
	s.outcomes[entry.Key] = o
	return o
}

func (s *Scheduler) stamp(resource string, kind domain.StampKind) (domain.Stamp, error) {
	st, ok := s.stampers[kind]
	if !ok {
		return domain.Stamp{}, zerr.With(domain.ErrUnknownStampKind, "kind", string(kind))
	}
	stamp, err := st.Stamp(resource)
	if err != nil {
		return domain.Stamp{}, zerr.With(zerr.Wrap(err, domain.ErrStampFailed.Error()), "resource", resource)
	}
	return stamp, nil
}
