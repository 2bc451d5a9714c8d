package ports

import (
	"context"

	"go.trai.ch/sift/internal/core/domain"
)

// Solver solves constraint sets produced by the generator.
//
//go:generate mockgen -source=solver.go -destination=mocks/mock_solver.go -package=mocks
type Solver interface {
	// Solve solves constraints in the context of prior bindings and returns the
	// bindings introduced by the constraint set. Unsatisfiable constraints yield
	// an error wrapping domain.ErrUnsatisfiable.
	Solve(ctx context.Context, constraints *domain.Term, prior domain.Bindings) (domain.Bindings, error)
}
