// Package sqlite implements the store of task entries on a single SQLite database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Store = (*Store)(nil)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS entries (
  key         TEXT PRIMARY KEY,
  kind        TEXT NOT NULL,
  entry       BLOB NOT NULL,
  generation  INTEGER NOT NULL,
  updated_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind);
`

// Store implements ports.Store on SQLite. Each entry is one row holding its JSON
// encoding; a put is a single upsert statement.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at dbPath with WAL mode enabled and creates the schema.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dbPath)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dbPath)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dbPath)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dbPath)
	}
	return &Store{db: db}, nil
}

// Get retrieves the entry for the given key.
func (s *Store) Get(key domain.TaskKey) (*domain.StoreEntry, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT entry FROM entries WHERE key = ?`, key.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key.String())
	}

	var entry domain.StoreEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key.String())
	}
	return &entry, nil
}

// Put stores the entry, replacing any previous entry for its key.
func (s *Store) Put(entry *domain.StoreEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error()), "key", entry.Key.String())
	}

	_, err = s.db.Exec(`
INSERT INTO entries (key, kind, entry, generation, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  kind = excluded.kind,
  entry = excluded.entry,
  generation = excluded.generation,
  updated_at = excluded.updated_at`,
		entry.Key.String(), entry.Key.Kind.String(), data, int64(entry.Generation), entry.Timestamp, //nolint:gosec // generations stay far below MaxInt64
	)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", entry.Key.String())
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
