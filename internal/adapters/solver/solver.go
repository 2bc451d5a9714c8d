// Package solver resolves the name-binding constraints produced by generators.
//
// Constraints are terms. Decl(name)[Type(t)] declares name with type t,
// Ref(name) requires name to be declared locally or in the prior bindings and
// Eq(a, b) requires two Type or Ref operands to denote the same type. Any other
// constructor groups constraints and is traversed.
package solver

import (
	"context"
	"fmt"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Solver = (*Solver)(nil)

// Constraint constructors.
const (
	ConDecl = "Decl"
	ConRef  = "Ref"
	ConEq   = "Eq"
	ConType = "Type"
)

// DefaultType is bound to declarations without a Type child.
const DefaultType = "any"

// UnsatisfiableError reports the first constraint that could not be satisfied.
type UnsatisfiableError struct {
	Reason string
	Span   *domain.Span
}

func (e *UnsatisfiableError) Error() string {
	msg := domain.ErrUnsatisfiable.Error() + ": " + e.Reason
	if e.Span != nil {
		msg += fmt.Sprintf(" at %d:%d", e.Span.StartLine, e.Span.StartColumn)
	}
	return msg
}

// Is reports whether target is domain.ErrUnsatisfiable.
func (e *UnsatisfiableError) Is(target error) bool {
	return target == domain.ErrUnsatisfiable
}

// Solver is a scope-based constraint solver.
type Solver struct{}

// NewSolver creates a new Solver.
func NewSolver() *Solver {
	return &Solver{}
}

// Solve collects every declaration first, then checks references and equalities
// in document order. It returns the declarations of constraints.
func (s *Solver) Solve(ctx context.Context, constraints *domain.Term, prior domain.Bindings) (domain.Bindings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	local := domain.Bindings{}
	var checks []*domain.Term
	var walkErr error
	constraints.Walk(func(t *domain.Term) bool {
		switch t.Constructor {
		case ConDecl:
			walkErr = declare(local, t)
			return walkErr == nil
		case ConRef, ConEq:
			checks = append(checks, t)
			return true
		default:
			return true
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	scope := prior.Merge(local)
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := check(scope, c); err != nil {
			return nil, err
		}
	}
	return local, nil
}

func declare(local domain.Bindings, t *domain.Term) error {
	if t.Value == "" {
		return zerr.With(domain.ErrMalformedConstraint, "constructor", ConDecl)
	}
	typ := DefaultType
	for _, c := range t.Children {
		if c.Constructor == ConType {
			typ = c.Value
		}
	}
	if prev, ok := local[t.Value]; ok && prev != typ {
		return &UnsatisfiableError{
			Reason: fmt.Sprintf("conflicting declarations of %q: %s and %s", t.Value, prev, typ),
			Span:   t.Span,
		}
	}
	local[t.Value] = typ
	return nil
}

func check(scope domain.Bindings, t *domain.Term) error {
	switch t.Constructor {
	case ConRef:
		_, err := resolve(scope, t)
		return err
	case ConEq:
		if len(t.Children) != 2 {
			return zerr.With(domain.ErrMalformedConstraint, "constructor", ConEq)
		}
		left, err := resolve(scope, t.Children[0])
		if err != nil {
			return err
		}
		right, err := resolve(scope, t.Children[1])
		if err != nil {
			return err
		}
		if left != right {
			return &UnsatisfiableError{Reason: fmt.Sprintf("type mismatch: %s and %s", left, right), Span: t.Span}
		}
	}
	return nil
}

// resolve returns the type denoted by a Type or Ref term.
func resolve(scope domain.Bindings, t *domain.Term) (string, error) {
	switch t.Constructor {
	case ConType:
		return t.Value, nil
	case ConRef:
		if t.Value == "" {
			return "", zerr.With(domain.ErrMalformedConstraint, "constructor", ConRef)
		}
		typ, ok := scope[t.Value]
		if !ok {
			return "", &UnsatisfiableError{Reason: fmt.Sprintf("unresolved reference %q", t.Value), Span: t.Span}
		}
		return typ, nil
	default:
		return "", zerr.With(domain.ErrMalformedConstraint, "constructor", t.Constructor)
	}
}
