package domain

import "path/filepath"

const (
	// SiftDirName is the name of the internal project directory.
	SiftDirName = ".sift"

	// StoreDirName is the name of the file-per-key store directory.
	StoreDirName = "store"

	// StoreDBName is the name of the SQLite store database.
	StoreDBName = "store.db"

	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "sift.yaml"

	// WorkFileName is the name of the workspace configuration file.
	WorkFileName = "sift.work.yaml"

	// LanguageFileSuffix is the suffix of language definition files.
	LanguageFileSuffix = ".lang.hcl"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultSiftPath returns the default root directory for sift metadata.
func DefaultSiftPath() string {
	return SiftDirName
}

// DefaultStorePath returns the default path for the file-per-key store.
// It joins .sift and store.
func DefaultStorePath() string {
	return filepath.Join(SiftDirName, StoreDirName)
}

// DefaultStoreDBPath returns the default path for the SQLite store.
// It joins .sift and store.db.
func DefaultStoreDBPath() string {
	return filepath.Join(SiftDirName, StoreDBName)
}
