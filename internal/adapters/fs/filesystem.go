package fs

import (
	"os"
	"slices"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem reads documents from the local disk.
type FileSystem struct {
	walker  *Walker
	ignores []string
}

// NewFileSystem creates a new FileSystem. Entries matching one of ignores are never listed.
func NewFileSystem(walker *Walker, ignores ...string) *FileSystem {
	return &FileSystem{walker: walker, ignores: ignores}
}

// ReadFile returns the content of the file at path.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", path)
	}
	return data, nil
}

// ListFiles returns the sorted relative paths of the files below root accepted by match.
// A missing root yields no files.
func (f *FileSystem) ListFiles(root string, match func(rel string) bool) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", root)
	}

	var files []string
	for rel := range f.walker.WalkFiles(root, f.ignores) {
		if match == nil || match(rel) {
			files = append(files, rel)
		}
	}
	slices.Sort(files)
	return files, nil
}
