package ports

import "go.trai.ch/sift/internal/core/domain"

// Store persists the incremental state: one entry per task key.
// Implementations replace entries whole; a reader never observes a partial write.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type Store interface {
	// Get retrieves the entry for the given key.
	// Returns nil, nil if not found.
	Get(key domain.TaskKey) (*domain.StoreEntry, error)

	// Put stores the entry, replacing any previous entry for the same key.
	Put(entry *domain.StoreEntry) error

	// Close releases the resources held by the store.
	Close() error
}

// StoreOpener opens the store of a workspace root with the requested backend.
type StoreOpener interface {
	// Open returns a store persisting below root.
	Open(root string, backend domain.StoreBackend) (Store, error)
}
