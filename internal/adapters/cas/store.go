// Package cas implements the file-per-key store of task entries.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Store = (*Store)(nil)

// Store implements ports.Store with one JSON file per task key.
// Files are named by the SHA-256 of the key and replaced by atomic rename.
type Store struct {
	dir string
}

// NewStore creates a Store keeping its entries in dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dir)
	}
	return &Store{dir: dir}, nil
}

// Get retrieves the entry for the given key.
func (s *Store) Get(key domain.TaskKey) (*domain.StoreEntry, error) {
	filename := s.getFilename(key)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key.String())
	}

	var entry domain.StoreEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key.String())
	}
	if entry.Key != key {
		// A different key hashed to the same file name.
		return nil, nil
	}

	return &entry, nil
}

// Put stores the entry, replacing any previous entry for its key.
func (s *Store) Put(entry *domain.StoreEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error()), "key", entry.Key.String())
	}

	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Already renamed on success

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), s.getFilename(entry.Key)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", entry.Key.String())
	}
	return nil
}

// Close does nothing; the store holds no open resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) getFilename(key domain.TaskKey) string {
	hash := sha256.Sum256([]byte(key.String()))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}
