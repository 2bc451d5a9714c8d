// Package generator runs constraint generators written as Risor scripts.
//
// Every entry point of a generator is one script. Arguments are handed to the
// script as globals holding term maps ({con, val, kids, span}); the value of the
// script's last expression is the result term.
package generator

import (
	"context"
	"maps"
	"slices"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/parser"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.GeneratorBuilder = (*Builder)(nil)
	_ ports.RewriteEngine    = (*Engine)(nil)
)

// Builder checks generator scripts and packages them into an artifact.
type Builder struct{}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build parses every script and returns an artifact holding their sources.
func (b *Builder) Build(ctx context.Context, sources ports.GeneratorSources) (*domain.GeneratorArtifact, error) {
	artifact := &domain.GeneratorArtifact{
		Language:    sources.Language,
		EntryPoints: make(map[string]string, len(sources.Scripts)),
	}
	for _, entry := range slices.Sorted(maps.Keys(sources.Scripts)) {
		src := string(sources.Scripts[entry])
		if _, err := parser.Parse(ctx, src); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrGeneratorBuildFailed.Error()), "entry_point", entry)
		}
		artifact.EntryPoints[entry] = src
	}
	return artifact, nil
}

// Engine evaluates generator entry points.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Run evaluates entryPoint with args bound as globals and converts its result to a term.
func (e *Engine) Run(
	ctx context.Context,
	artifact *domain.GeneratorArtifact,
	entryPoint string,
	args map[string]*domain.Term,
) (*domain.Term, error) {
	src, ok := artifact.EntryPoints[entryPoint]
	if !ok {
		return nil, zerr.With(domain.ErrEntryPointMissing, "entry_point", entryPoint)
	}

	globals := builtins()
	for name, arg := range args {
		globals[name] = termToObject(arg)
	}
	opts := make([]risor.Option, 0, len(globals))
	for _, name := range slices.Sorted(maps.Keys(globals)) {
		opts = append(opts, risor.WithGlobal(name, globals[name]))
	}

	result, err := risor.Eval(ctx, src, opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEngineFailed.Error()), "entry_point", entryPoint)
	}

	term, err := objectToTerm(result)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrEngineFailed.Error()), "entry_point", entryPoint)
	}
	return term, nil
}
