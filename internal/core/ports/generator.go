package ports

import (
	"context"

	"go.trai.ch/sift/internal/core/domain"
)

// GeneratorSources are the sources a constraint generator is built from.
type GeneratorSources struct {
	Language string
	// Scripts maps an entry-point name to its source.
	Scripts map[string][]byte
}

// GeneratorBuilder compiles generator sources into a runnable artifact.
//
//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
type GeneratorBuilder interface {
	// Build compiles the sources. It returns an error wrapping
	// domain.ErrGeneratorBuildFailed when a source does not compile.
	Build(ctx context.Context, sources GeneratorSources) (*domain.GeneratorArtifact, error)
}

// RewriteEngine runs an entry point of a generator artifact on argument terms.
type RewriteEngine interface {
	// Run invokes entryPoint with the named arguments and returns the result term.
	// Errors raised by the program are returned wrapping domain.ErrEngineFailed.
	Run(ctx context.Context, artifact *domain.GeneratorArtifact, entryPoint string, args map[string]*domain.Term) (*domain.Term, error)
}
