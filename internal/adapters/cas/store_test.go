package cas_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/cas"
	"go.trai.ch/sift/internal/core/domain"
)

func sampleEntry(input string) *domain.StoreEntry {
	return &domain.StoreEntry{
		Key:    domain.NewTaskKey("parse", input),
		Output: []byte(`{"path":"a.lang"}`),
		Edges: []domain.DependencyEdge{
			{
				Kind:     domain.EdgeResource,
				Resource: "/p/a.lang",
				Stamp:    domain.Stamp{Kind: domain.StampFileContent, Value: "abc"},
			},
			{
				Kind:  domain.EdgeTask,
				Task:  domain.NewTaskKey("compile-generator", `{"language":"tiger"}`),
				Stamp: domain.Stamp{Kind: domain.StampOutput, Value: "def"},
			},
		},
		Generation: 3,
		Timestamp:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		entry := sampleEntry(`"a.lang"`)
		require.NoError(t, store.Put(entry))

		got, err := store.Get(entry.Key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entry, got)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		got, err := store.Get(domain.NewTaskKey("parse", `"missing.lang"`))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("failure round trip", func(t *testing.T) {
		t.Parallel()
		entry := sampleEntry(`"failed.lang"`)
		entry.Output = nil
		entry.Failure = "generator build failed"
		require.NoError(t, store.Put(entry))

		got, err := store.Get(entry.Key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Failed())
		assert.Equal(t, entry, got)
	})
}

func TestStore_ReplacesWholeEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := cas.NewStore(dir)
	require.NoError(t, err)

	entry := sampleEntry(`"a.lang"`)
	require.NoError(t, store.Put(entry))

	replaced := sampleEntry(`"a.lang"`)
	replaced.Edges = replaced.Edges[:1]
	replaced.Generation = 4
	require.NoError(t, store.Put(replaced))

	got, err := store.Get(entry.Key)
	require.NoError(t, err)
	assert.Equal(t, replaced, got)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1, "temporary files must not be left behind")
	assert.True(t, strings.HasSuffix(files[0].Name(), ".json"))
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := cas.NewStore(dir)
	require.NoError(t, err)

	entry := sampleEntry(`"a.lang"`)
	require.NoError(t, store.Put(entry))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, files[0].Name()), []byte("{invalid json"), domain.FilePerm))

	_, err = store.Get(entry.Key)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, err := cas.NewStore(dir)
	require.NoError(t, err)
	entry := sampleEntry(`"a.lang"`)
	require.NoError(t, first.Put(entry))
	require.NoError(t, first.Close())

	second, err := cas.NewStore(dir)
	require.NoError(t, err)
	got, err := second.Get(entry.Key)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestNewStore_CreateFailed(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, domain.FilePerm))

	_, err := cas.NewStore(filepath.Join(file, "store"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreCreateFailed.Error())
}
