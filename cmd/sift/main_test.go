package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/config"
	"go.trai.ch/sift/internal/adapters/fs"
	"go.trai.ch/sift/internal/adapters/generator"
	"go.trai.ch/sift/internal/adapters/solver"
	"go.trai.ch/sift/internal/adapters/store"
	"go.trai.ch/sift/internal/adapters/treesitter"
	"go.trai.ch/sift/internal/app"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const languageDef = `
language "py" {
  extensions    = [".py"]
  grammar       = "python"
  generator_dir = "gen"
  entry_points  = { cgen_global = "global.risor", cgen_document = "document.risor" }
}
`

func newProvider(a *app.App, log *mocks.MockLogger) ComponentProvider {
	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: a, Logger: log}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := app.New(mocks.NewMockConfigLoader(ctrl), mockLogger, app.Analyzers{}, store.NewOpener(), mocks.NewMockWatcher(ctrl))

	stdout := new(bytes.Buffer)
	exitCode := run(t.Context(), []string{"version"}, stdout, io.Discard, newProvider(application, mockLogger))
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "sift version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(t.Context(), []string{"version"}, io.Discard, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := app.New(mockLoader, mockLogger, app.Analyzers{}, store.NewOpener(), mocks.NewMockWatcher(ctrl))

	mockLoader.EXPECT().Load(".").Return(nil, errors.New("load failed"))
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorContains(t, err, "load failed")
	})

	exitCode := run(t.Context(), []string{"analyze"}, io.Discard, io.Discard, newProvider(application, mockLogger))
	assert.Equal(t, 1, exitCode)
}

// TestRun_DegradedIsNotLogged verifies that a strict analysis with failed documents
// exits 1 without logging, since the report already lists the failures.
func TestRun_DegradedIsNotLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	for name, content := range map[string]string{
		"py.lang.hcl":        languageDef,
		"gen/global.risor":   `term("Constraints", "", [])`,
		"gen/document.risor": `term("Constraints", file["val"], [])`,
		"sift.yaml":          "project: demo\nlanguage: py.lang.hcl\nexclude: [\"gen/*\"]\n",
		"broken.py":          "def (\n",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	}
	t.Chdir(root)

	walker := fs.NewWalker()
	application := app.New(config.NewLoader(mockLogger), mockLogger, app.Analyzers{
		FileSystem: fs.NewFileSystem(walker),
		Stampers:   fs.Stampers(walker),
		Parser:     treesitter.NewParser(),
		Builder:    generator.NewBuilder(),
		Engine:     generator.NewEngine(),
		Solver:     solver.NewSolver(),
	}, store.NewOpener(), mocks.NewMockWatcher(ctrl))

	stdout := new(bytes.Buffer)
	args := []string{"analyze", "--strict", "--color", "never"}
	exitCode := run(t.Context(), args, stdout, io.Discard, newProvider(application, mockLogger))
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stdout.String(), "broken.py")
}

// TestRun_Signal verifies that the context is canceled on signal.
func TestRun_Signal(t *testing.T) {
	ctrl := gomock.NewController(t)
	blockCh := make(chan struct{})

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLoader.EXPECT().Load(gomock.Any()).DoAndReturn(func(_ string) (*domain.Workspace, error) {
		select {
		case <-blockCh:
			return nil, context.Canceled
		case <-time.After(5 * time.Second):
			return nil, errors.New("timeout in mock")
		}
	})

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	application := app.New(mockLoader, mockLogger, app.Analyzers{}, store.NewOpener(), mocks.NewMockWatcher(ctrl))

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"analyze"}, io.Discard, io.Discard, newProvider(application, mockLogger))
	}()

	// Wait a bit to ensure run() reaches Load()
	time.Sleep(100 * time.Millisecond)

	cancel()
	close(blockCh)

	select {
	case ret := <-errCh:
		assert.NotEqual(t, 0, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
