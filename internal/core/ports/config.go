package ports

import "go.trai.ch/sift/internal/core/domain"

// ConfigLoader defines the interface for loading the workspace configuration.
//
//go:generate mockgen -source=config.go -destination=mocks/mock_config.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration found from the given working directory.
	Load(cwd string) (*domain.Workspace, error)

	// DiscoverRoot walks up from cwd to find the workspace root.
	// Returns the directory containing sift.work.yaml or sift.yaml.
	DiscoverRoot(cwd string) (string, error)
}
