// Package store selects the persistence backend of a workspace.
package store

import (
	"path/filepath"

	"go.trai.ch/sift/internal/adapters/cas"
	"go.trai.ch/sift/internal/adapters/sqlite"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StoreOpener = (*Opener)(nil)

// Opener opens the store below a workspace root.
type Opener struct{}

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open returns the store of root for the backend. An empty backend selects the file store.
func (o *Opener) Open(root string, backend domain.StoreBackend) (ports.Store, error) {
	switch backend {
	case domain.StoreBackendFile, "":
		return cas.NewStore(filepath.Join(root, domain.DefaultStorePath()))
	case domain.StoreBackendSQLite:
		return sqlite.NewStore(filepath.Join(root, domain.DefaultStoreDBPath()))
	default:
		return nil, zerr.With(domain.ErrInvalidStoreBackend, "backend", string(backend))
	}
}
