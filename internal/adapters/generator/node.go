package generator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sift/internal/core/ports"
)

const (
	// BuilderNodeID is the unique identifier for the generator builder Graft node.
	BuilderNodeID graft.ID = "adapter.generator_builder"
	// EngineNodeID is the unique identifier for the rewriting engine Graft node.
	EngineNodeID graft.ID = "adapter.rewrite_engine"
)

func init() {
	graft.Register(graft.Node[ports.GeneratorBuilder]{
		ID:        BuilderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GeneratorBuilder, error) {
			return NewBuilder(), nil
		},
	})

	graft.Register(graft.Node[ports.RewriteEngine]{
		ID:        EngineNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RewriteEngine, error) {
			return NewEngine(), nil
		},
	})
}
