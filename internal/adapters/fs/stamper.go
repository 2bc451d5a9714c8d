package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Stamper = (*ContentStamper)(nil)
	_ ports.Stamper = (*ModTimeStamper)(nil)
	_ ports.Stamper = (*ListingStamper)(nil)
)

// ContentStamper stamps a file with the XXHash of its content.
type ContentStamper struct{}

// NewContentStamper creates a new ContentStamper.
func NewContentStamper() *ContentStamper {
	return &ContentStamper{}
}

// Kind returns domain.StampFileContent.
func (s *ContentStamper) Kind() domain.StampKind {
	return domain.StampFileContent
}

// Stamp computes the XXHash of the file's content.
func (s *ContentStamper) Stamp(path string) (domain.Stamp, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return absent(domain.StampFileContent), nil
		}
		return domain.Stamp{}, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	info, err := f.Stat()
	if err != nil {
		return domain.Stamp{}, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	if info.IsDir() {
		return absent(domain.StampFileContent), nil
	}

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return domain.Stamp{}, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return domain.Stamp{Kind: domain.StampFileContent, Value: hex(hasher.Sum64())}, nil
}

// ModTimeStamper stamps a file with its modification time.
type ModTimeStamper struct{}

// NewModTimeStamper creates a new ModTimeStamper.
func NewModTimeStamper() *ModTimeStamper {
	return &ModTimeStamper{}
}

// Kind returns domain.StampFileModified.
func (s *ModTimeStamper) Kind() domain.StampKind {
	return domain.StampFileModified
}

// Stamp returns the modification time of the file in nanoseconds.
func (s *ModTimeStamper) Stamp(path string) (domain.Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return absent(domain.StampFileModified), nil
		}
		return domain.Stamp{}, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	return domain.Stamp{
		Kind:  domain.StampFileModified,
		Value: strconv.FormatInt(info.ModTime().UnixNano(), 10),
	}, nil
}

// ListingStamper stamps a directory tree with the XXHash of its sorted file list.
// Resources are built with domain.ListingResource.
type ListingStamper struct {
	walker *Walker
}

// NewListingStamper creates a new ListingStamper.
func NewListingStamper(walker *Walker) *ListingStamper {
	return &ListingStamper{walker: walker}
}

// Kind returns domain.StampDirListing.
func (s *ListingStamper) Kind() domain.StampKind {
	return domain.StampDirListing
}

// Stamp hashes the relative paths of the files below the directory whose
// extension passes the resource's filter. File contents do not contribute.
func (s *ListingStamper) Stamp(resource string) (domain.Stamp, error) {
	dir, exts := domain.ParseListingResource(resource)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return absent(domain.StampDirListing), nil
		}
		return domain.Stamp{}, zerr.With(zerr.Wrap(err, "failed to stat directory"), "path", dir)
	}
	if !info.IsDir() {
		return absent(domain.StampDirListing), nil
	}

	var files []string
	for rel := range s.walker.WalkFiles(dir, nil) {
		if len(exts) == 0 || slices.Contains(exts, strings.ToLower(filepath.Ext(rel))) {
			files = append(files, rel)
		}
	}
	slices.Sort(files)

	hasher := xxhash.New()
	for _, f := range files {
		_, _ = hasher.WriteString(f)
		_, _ = hasher.Write([]byte{0})
	}
	return domain.Stamp{Kind: domain.StampDirListing, Value: hex(hasher.Sum64())}, nil
}

// Stampers returns one stamper of every file-system stamp kind.
func Stampers(walker *Walker) []ports.Stamper {
	return []ports.Stamper{
		NewContentStamper(),
		NewModTimeStamper(),
		NewListingStamper(walker),
	}
}

func absent(kind domain.StampKind) domain.Stamp {
	return domain.Stamp{Kind: kind, Value: domain.AbsentStampValue}
}

func hex(sum uint64) string {
	return strconv.FormatUint(sum, 16)
}
