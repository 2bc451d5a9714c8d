package scheduler

import (
	"encoding/json"
	"slices"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/zerr"
)

// Definition is a registered task kind. It is implemented by *TaskDef.
type Definition interface {
	// Kind returns the identifier of the task kind.
	Kind() string

	run(ec *ExecContext, input string) (value any, output []byte, err error)
	decode(output []byte) (any, error)
}

// TaskDef is a stateless definition mapping an input of type I to an output of type O.
// Inputs and outputs must round-trip through encoding/json; the encoding of the input
// is the task key, so two inputs encoding to the same bytes denote the same computation.
type TaskDef[I, O any] struct {
	kind string
	fn   func(*ExecContext, I) (O, error)
}

// Define creates a task definition of the given kind.
func Define[I, O any](kind string, fn func(*ExecContext, I) (O, error)) *TaskDef[I, O] {
	return &TaskDef[I, O]{kind: kind, fn: fn}
}

// Kind returns the identifier of the task kind.
func (d *TaskDef[I, O]) Kind() string {
	return d.kind
}

// Key returns the task key for the given input.
func (d *TaskDef[I, O]) Key(input I) (domain.TaskKey, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return domain.TaskKey{}, zerr.With(zerr.Wrap(err, domain.ErrInputEncodeFailed.Error()), "kind", d.kind)
	}
	return domain.NewTaskKey(d.kind, string(raw)), nil
}

func (d *TaskDef[I, O]) run(ec *ExecContext, raw string) (any, []byte, error) {
	var input I
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, nil, fault(zerr.With(zerr.Wrap(err, domain.ErrInputDecodeFailed.Error()), "key", ec.Key().String()))
	}

	out, err := d.fn(ec, input)
	if err != nil {
		return nil, nil, err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, nil, fault(zerr.With(zerr.Wrap(err, domain.ErrOutputEncodeFailed.Error()), "key", ec.Key().String()))
	}
	return out, data, nil
}

func (d *TaskDef[I, O]) decode(data []byte) (any, error) {
	var out O
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fault(zerr.With(zerr.Wrap(err, domain.ErrOutputDecodeFailed.Error()), "kind", d.kind))
	}
	return out, nil
}

// Registry maps task kinds to their definitions.
// It is built once at startup and handed to the Scheduler.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates a registry holding the given definitions.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a definition. It fails if the kind is already registered.
func (r *Registry) Register(def Definition) error {
	if _, exists := r.defs[def.Kind()]; exists {
		return zerr.With(domain.ErrTaskAlreadyExists, "kind", def.Kind())
	}
	r.defs[def.Kind()] = def
	return nil
}

// Lookup returns the definition registered for kind.
func (r *Registry) Lookup(kind string) (Definition, bool) {
	def, ok := r.defs[kind]
	return def, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.defs))
	for kind := range r.defs {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}
