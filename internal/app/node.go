package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sift/internal/adapters/config"
	"go.trai.ch/sift/internal/adapters/fs"
	"go.trai.ch/sift/internal/adapters/generator"
	"go.trai.ch/sift/internal/adapters/logger"
	"go.trai.ch/sift/internal/adapters/solver"
	"go.trai.ch/sift/internal/adapters/store"
	"go.trai.ch/sift/internal/adapters/treesitter"
	"go.trai.ch/sift/internal/adapters/watcher"
	"go.trai.ch/sift/internal/core/ports"
)

const (
	// AnalyzersNodeID is the unique identifier for the analyzer adapters Graft node.
	AnalyzersNodeID graft.ID = "app.analyzers"
	// AppNodeID is the unique identifier for the application Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI layer needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[Analyzers]{
		ID:        AnalyzersNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.FileSystemNodeID,
			fs.StampersNodeID,
			treesitter.NodeID,
			generator.BuilderNodeID,
			generator.EngineNodeID,
			solver.NodeID,
		},
		Run: func(ctx context.Context) (Analyzers, error) {
			var an Analyzers
			var err error
			if an.FileSystem, err = graft.Dep[ports.FileSystem](ctx); err != nil {
				return an, err
			}
			if an.Stampers, err = graft.Dep[[]ports.Stamper](ctx); err != nil {
				return an, err
			}
			if an.Parser, err = graft.Dep[ports.Parser](ctx); err != nil {
				return an, err
			}
			if an.Builder, err = graft.Dep[ports.GeneratorBuilder](ctx); err != nil {
				return an, err
			}
			if an.Engine, err = graft.Dep[ports.RewriteEngine](ctx); err != nil {
				return an, err
			}
			if an.Solver, err = graft.Dep[ports.Solver](ctx); err != nil {
				return an, err
			}
			return an, nil
		},
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			AnalyzersNodeID,
			store.NodeID,
			watcher.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			analyzers, err := graft.Dep[Analyzers](ctx)
			if err != nil {
				return nil, err
			}
			stores, err := graft.Dep[ports.StoreOpener](ctx)
			if err != nil {
				return nil, err
			}
			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			return New(loader, log, analyzers, stores, w), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}
