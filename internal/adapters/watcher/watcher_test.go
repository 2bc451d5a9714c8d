package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/watcher"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsChangesOutsideStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	storeDir := filepath.Join(root, domain.SiftDirName)
	require.NoError(t, os.MkdirAll(storeDir, domain.DirPerm))

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), root))
	t.Cleanup(func() { _ = w.Stop() })

	events := make(chan ports.WatchEvent, 16)
	go func() {
		for ev := range w.Events() {
			events <- ev
		}
	}()

	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "entry"), []byte("x"), domain.FilePerm))
	target := filepath.Join(root, "a.lang")
	require.NoError(t, os.WriteFile(target, []byte("a"), domain.FilePerm))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			assert.NotContains(t, ev.Path, domain.SiftDirName, "store writes are not reported")
			if ev.Path == target {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for the document event")
		}
	}
}
