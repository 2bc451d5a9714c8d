package fs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/fs"
	"go.trai.ch/sift/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "b.lang"), "b")
	writeFile(t, filepath.Join(tmpDir, "dir", "a.lang"), "a")
	writeFile(t, filepath.Join(tmpDir, ".git", "config"), "git")
	writeFile(t, filepath.Join(tmpDir, ".sift", "store", "x.json"), "{}")
	writeFile(t, filepath.Join(tmpDir, "build", "out.lang"), "out")

	var files []string
	for rel := range fs.NewWalker().WalkFiles(tmpDir, []string{"build"}) {
		files = append(files, rel)
	}

	assert.Equal(t, []string{"b.lang", "dir/a.lang"}, files)
}

func TestFileSystem_ListFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "z.lang"), "z")
	writeFile(t, filepath.Join(tmpDir, "a.lang"), "a")
	writeFile(t, filepath.Join(tmpDir, "notes.txt"), "n")

	fsys := fs.NewFileSystem(fs.NewWalker())

	files, err := fsys.ListFiles(tmpDir, func(rel string) bool { return strings.HasSuffix(rel, ".lang") })
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lang", "z.lang"}, files)

	files, err = fsys.ListFiles(filepath.Join(tmpDir, "missing"), nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileSystem_ReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a.lang")
	writeFile(t, path, "let x = 1")

	fsys := fs.NewFileSystem(fs.NewWalker())

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "let x = 1", string(data))

	_, err = fsys.ReadFile(filepath.Join(tmpDir, "missing.lang"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrFileReadFailed.Error())
}

func TestContentStamper(t *testing.T) {
	t.Run("Content Change", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.lang")
		writeFile(t, path, "content1")

		stamper := fs.NewContentStamper()
		s1, err := stamper.Stamp(path)
		require.NoError(t, err)
		assert.Equal(t, domain.StampFileContent, s1.Kind)

		writeFile(t, path, "content2")
		s2, err := stamper.Stamp(path)
		require.NoError(t, err)

		assert.False(t, s1.Equal(s2), "stamp should change when content changes")
	})

	t.Run("Metadata Change", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.lang")
		writeFile(t, path, "content")

		stamper := fs.NewContentStamper()
		s1, err := stamper.Stamp(path)
		require.NoError(t, err)

		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(path, future, future))

		s2, err := stamper.Stamp(path)
		require.NoError(t, err)
		assert.True(t, s1.Equal(s2), "stamp should not change when only mtime changes")
	})

	t.Run("Missing File", func(t *testing.T) {
		st, err := fs.NewContentStamper().Stamp(filepath.Join(t.TempDir(), "missing.lang"))
		require.NoError(t, err)
		assert.Equal(t, domain.AbsentStampValue, st.Value)
	})
}

func TestModTimeStamper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lang")
	writeFile(t, path, "content")

	stamper := fs.NewModTimeStamper()
	s1, err := stamper.Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, domain.StampFileModified, s1.Kind)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	s2, err := stamper.Stamp(path)
	require.NoError(t, err)
	assert.False(t, s1.Equal(s2))

	missing, err := stamper.Stamp(path + ".missing")
	require.NoError(t, err)
	assert.Equal(t, domain.AbsentStampValue, missing.Value)
}

func TestListingStamper(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.lang"), "a")
	writeFile(t, filepath.Join(tmpDir, "notes.txt"), "n")

	stamper := fs.NewListingStamper(fs.NewWalker())
	res := domain.ListingResource(tmpDir, []string{".lang"})

	s1, err := stamper.Stamp(res)
	require.NoError(t, err)
	assert.Equal(t, domain.StampDirListing, s1.Kind)

	t.Run("content edits do not change the listing", func(t *testing.T) {
		writeFile(t, filepath.Join(tmpDir, "a.lang"), "changed")
		s, err := stamper.Stamp(res)
		require.NoError(t, err)
		assert.True(t, s1.Equal(s))
	})

	t.Run("files outside the filter do not change the listing", func(t *testing.T) {
		writeFile(t, filepath.Join(tmpDir, "other.txt"), "o")
		s, err := stamper.Stamp(res)
		require.NoError(t, err)
		assert.True(t, s1.Equal(s))
	})

	t.Run("added files change the listing", func(t *testing.T) {
		writeFile(t, filepath.Join(tmpDir, "sub", "b.lang"), "b")
		s, err := stamper.Stamp(res)
		require.NoError(t, err)
		assert.False(t, s1.Equal(s))
	})

	t.Run("missing directory is absent", func(t *testing.T) {
		s, err := stamper.Stamp(domain.ListingResource(filepath.Join(tmpDir, "missing"), nil))
		require.NoError(t, err)
		assert.Equal(t, domain.AbsentStampValue, s.Value)
	})
}

func TestStampers(t *testing.T) {
	kinds := make(map[domain.StampKind]bool)
	for _, st := range fs.Stampers(fs.NewWalker()) {
		kinds[st.Kind()] = true
	}
	assert.Equal(t, map[domain.StampKind]bool{
		domain.StampFileContent:  true,
		domain.StampFileModified: true,
		domain.StampDirListing:   true,
	}, kinds)
}
