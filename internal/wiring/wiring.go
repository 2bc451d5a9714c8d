// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/sift/internal/adapters/config"
	_ "go.trai.ch/sift/internal/adapters/fs"
	_ "go.trai.ch/sift/internal/adapters/generator"
	_ "go.trai.ch/sift/internal/adapters/logger"
	_ "go.trai.ch/sift/internal/adapters/solver"
	_ "go.trai.ch/sift/internal/adapters/store"
	_ "go.trai.ch/sift/internal/adapters/treesitter"
	_ "go.trai.ch/sift/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/sift/internal/app"
)
