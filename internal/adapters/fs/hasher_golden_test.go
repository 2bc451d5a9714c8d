package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/fs"
)

// expectedContentStamp is the golden stamp of the fixed content below.
// If this changes, every stored entry of every user becomes stale.
// Validate the change carefully before updating this constant.
const expectedContentStamp = "44bc2cf5ad770999"

func TestContentStamper_Golden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden.lang")
	writeFile(t, path, "abc")

	st, err := fs.NewContentStamper().Stamp(path)
	require.NoError(t, err)
	require.Equal(t, expectedContentStamp, st.Value, "stamp algorithm changed! Verify if this is intentional.")
}
