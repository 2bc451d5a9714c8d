package scheduler

import (
	"context"
	"sync"

	"go.trai.ch/sift/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// frame is one entry of the require chain leading to a running task.
type frame struct {
	key    domain.TaskKey
	parent *frame
}

func (f *frame) checkCycle(key domain.TaskKey) error {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.key != key {
			continue
		}
		var chain []domain.TaskKey
		for c := f; c != cur; c = c.parent {
			chain = append(chain, c.key)
		}
		chain = append(chain, cur.key)
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
		return &CycleError{Chain: append(chain, key)}
	}
	return nil
}

// ExecContext is handed to a running task. It records every dependency the task
// observes, in call order, so the scheduler can later decide whether the task is fresh.
type ExecContext struct {
	ctx   context.Context
	sess  *Session
	frame *frame

	mu    sync.Mutex
	edges []domain.DependencyEdge
	index map[string]int
}

func newExecContext(ctx context.Context, sess *Session, f *frame) *ExecContext {
	return &ExecContext{
		ctx:   ctx,
		sess:  sess,
		frame: f,
		index: make(map[string]int),
	}
}

// Context returns the context of the build.
func (ec *ExecContext) Context() context.Context {
	return ec.ctx
}

// Key returns the key of the running task.
func (ec *ExecContext) Key() domain.TaskKey {
	return ec.frame.key
}

// RequireStamped records a dependency on an external resource and returns its current stamp.
func (ec *ExecContext) RequireStamped(resource string, kind domain.StampKind) (domain.Stamp, error) {
	st, err := ec.sess.s.stamp(resource, kind)
	if err != nil {
		return domain.Stamp{}, fault(err)
	}
	ec.record(domain.DependencyEdge{Kind: domain.EdgeResource, Resource: resource, Stamp: st})
	return st, nil
}

// record appends an edge. A repeated dependency keeps its first position and its latest stamp.
func (ec *ExecContext) record(edge domain.DependencyEdge) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	target := edge.Target()
	if i, ok := ec.index[target]; ok {
		ec.edges[i].Stamp = edge.Stamp
		return
	}
	ec.index[target] = len(ec.edges)
	ec.edges = append(ec.edges, edge)
}

func (ec *ExecContext) recorded() []domain.DependencyEdge {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	out := make([]domain.DependencyEdge, len(ec.edges))
	copy(out, ec.edges)
	return out
}

// fork returns a context for a concurrent branch of the running task.
// Its edges are folded back with merge.
func (ec *ExecContext) fork(ctx context.Context) *ExecContext {
	return newExecContext(ctx, ec.sess, ec.frame)
}

func (ec *ExecContext) merge(child *ExecContext) {
	for _, edge := range child.recorded() {
		ec.record(edge)
	}
}

// Require requires the task def(input) from inside a running task and records the
// dependency edge. A failed dependency is returned as a *TaskFailure.
func Require[I, O any](ec *ExecContext, def *TaskDef[I, O], input I) (O, error) {
	var zero O
	key, err := def.Key(input)
	if err != nil {
		return zero, fault(err)
	}

	o, err := ec.sess.s.require(ec.ctx, ec.sess, key, ec.frame)
	if err != nil {
		return zero, err
	}
	ec.record(domain.DependencyEdge{Kind: domain.EdgeTask, Task: key, Stamp: o.stamp})
	return resolve(def, o)
}

// Result is the outcome of one require issued by RequireEach.
type Result[O any] struct {
	Value O
	Err   error
}

// RequireEach requires def for every input, running at most limit requires at a time.
// Task failures are reported per input; an engine fault aborts and is returned.
// Edges are recorded in input order regardless of completion order.
//
// The requires run detached from the cancellation of ec: when the caller stops
// waiting, the requires already in flight complete and still update the store.
func RequireEach[I, O any](ec *ExecContext, def *TaskDef[I, O], inputs []I, limit int) ([]Result[O], error) {
	results := make([]Result[O], len(inputs))
	children := make([]*ExecContext, len(inputs))

	g, gctx := errgroup.WithContext(context.WithoutCancel(ec.ctx))
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range inputs {
		children[i] = ec.fork(gctx)
	}

	done := make(chan error, 1)
	go func() {
		for i, input := range inputs {
			g.Go(func() error {
				v, err := Require(children[i], def, input)
				if err != nil && IsFault(err) {
					return err
				}
				results[i] = Result[O]{Value: v, Err: err}
				return nil
			})
		}
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
	case <-ec.ctx.Done():
		return nil, fault(ec.ctx.Err())
	}

	for _, child := range children {
		ec.merge(child)
	}
	return results, nil
}
