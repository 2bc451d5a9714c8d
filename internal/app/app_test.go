package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
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
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const languageDef = `
language "pyish" {
  extensions    = [".py"]
  grammar       = "python"
  generator_dir = "gen"
  entry_points  = { cgen_global = "global.risor", cgen_document = "document.risor" }
  styles        = { identifier = "variable", integer = "number" }
}
`

const globalScript = `
decls := []
for _, doc := range program["kids"] {
	decls.append(term("Decl", doc["val"], [term("Type", "module")]))
}
term("Constraints", "", decls)
`

const documentScript = `
term("Constraints", file["val"], [term("Ref", file["val"])])
`

// syncBuffer is a bytes.Buffer safe for the concurrent writes of watch mode.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

// newWorkspace creates a standalone project with one valid and one broken
// document and makes it the working directory.
func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "pyish.lang.hcl", languageDef)
	writeFile(t, root, "gen/global.risor", globalScript)
	writeFile(t, root, "gen/document.risor", documentScript)
	writeFile(t, root, domain.ProjectFileName, "version: \"1\"\nproject: demo\nlanguage: pyish.lang.hcl\nexclude: [\"gen/*\"]\n")
	writeFile(t, root, "a.py", "x = 1\n")
	writeFile(t, root, "b.py", "def (\n")
	t.Chdir(root)
	return root
}

type harness struct {
	app       *app.App
	analyzers app.Analyzers
	stdout    *syncBuffer
	stderr    *syncBuffer
	watcher   *mocks.MockWatcher
	logger    *mocks.MockLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockWatcher := mocks.NewMockWatcher(ctrl)

	walker := fs.NewWalker()
	analyzers := app.Analyzers{
		FileSystem: fs.NewFileSystem(walker),
		Stampers:   fs.Stampers(walker),
		Parser:     treesitter.NewParser(),
		Builder:    generator.NewBuilder(),
		Engine:     generator.NewEngine(),
		Solver:     solver.NewSolver(),
	}

	h := &harness{analyzers: analyzers, stdout: &syncBuffer{}, stderr: &syncBuffer{}, watcher: mockWatcher, logger: mockLogger}
	h.app = app.New(config.NewLoader(mockLogger), mockLogger, analyzers, store.NewOpener(), mockWatcher).
		WithOutput(h.stdout, h.stderr)
	return h
}

func TestApp_Analyze_Report(t *testing.T) {
	root := newWorkspace(t)
	h := newHarness(t)

	err := h.app.Analyze(t.Context(), app.AnalyzeOptions{Color: "never"})
	require.NoError(t, err)

	out := h.stdout.String()
	assert.Contains(t, out, "● demo: 2 document(s), 1 ok, 1 failed")
	assert.Contains(t, out, "✓ a.py ok")
	assert.Contains(t, out, "✗ b.py parse-failed")
	assert.Empty(t, h.stderr.String(), "progress is only printed in verbose mode")

	_, err = os.Stat(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err, "the file store is created below the workspace root")
}

func TestApp_Analyze_JSON(t *testing.T) {
	newWorkspace(t)
	h := newHarness(t)

	err := h.app.Analyze(t.Context(), app.AnalyzeOptions{JSON: true, Projects: []string{"demo"}})
	require.NoError(t, err)

	var results []*domain.FinalResult
	require.NoError(t, json.Unmarshal([]byte(h.stdout.String()), &results))
	require.Len(t, results, 1)

	final := results[0]
	assert.Equal(t, "demo", final.Project)
	assert.Equal(t, domain.StatusOK, final.GlobalStatus)
	assert.Equal(t, []string{"b.py"}, final.Failed)
	assert.Equal(t, "module", final.Bindings["a.py"])

	doc, ok := final.Document("b.py")
	require.True(t, ok)
	assert.Equal(t, domain.StatusParseFailed, doc.Status)
	assert.NotEmpty(t, doc.Messages)
}

func TestApp_Analyze_Strict(t *testing.T) {
	newWorkspace(t)
	h := newHarness(t)

	err := h.app.Analyze(t.Context(), app.AnalyzeOptions{Strict: true, Color: "never"})
	require.ErrorIs(t, err, domain.ErrAnalysisDegraded)
	assert.Contains(t, h.stdout.String(), "✗ b.py parse-failed", "the report is printed before failing")
}

func TestApp_Analyze_StoreOpenFailure(t *testing.T) {
	newWorkspace(t)
	h := newHarness(t)
	opener := mocks.NewMockStoreOpener(gomock.NewController(t))
	opener.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, domain.ErrStoreCreateFailed)
	h.app = app.New(config.NewLoader(h.logger), h.logger, h.analyzers, opener, h.watcher).
		WithOutput(h.stdout, h.stderr)

	err := h.app.Analyze(t.Context(), app.AnalyzeOptions{Color: "never"})
	require.ErrorIs(t, err, domain.ErrStoreCreateFailed)
	assert.Empty(t, h.stdout.String())
}

func TestApp_Analyze_Verbose(t *testing.T) {
	newWorkspace(t)
	h := newHarness(t)

	err := h.app.Analyze(t.Context(), app.AnalyzeOptions{Verbose: true, Color: "never"})
	require.NoError(t, err)
	assert.Contains(t, h.stderr.String(), "[parse")
}

func TestApp_Analyze_SqliteBackend(t *testing.T) {
	root := newWorkspace(t)
	writeFile(t, root, domain.ProjectFileName, "version: \"1\"\nproject: demo\nlanguage: pyish.lang.hcl\nstore: sqlite\nexclude: [\"gen/*\"]\n")
	h := newHarness(t)

	require.NoError(t, h.app.Analyze(t.Context(), app.AnalyzeOptions{Color: "never"}))
	require.NoError(t, h.app.Analyze(t.Context(), app.AnalyzeOptions{Color: "never"}))

	_, err := os.Stat(filepath.Join(root, domain.DefaultStoreDBPath()))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(h.stdout.String(), "✓ a.py ok"))
}

func TestApp_Analyze_Errors(t *testing.T) {
	t.Run("unknown project", func(t *testing.T) {
		newWorkspace(t)
		h := newHarness(t)

		err := h.app.Analyze(t.Context(), app.AnalyzeOptions{Projects: []string{"nope"}})
		require.ErrorContains(t, err, domain.ErrProjectNotFound.Error())
	})

	t.Run("no configuration", func(t *testing.T) {
		t.Chdir(t.TempDir())
		h := newHarness(t)

		err := h.app.Analyze(t.Context(), app.AnalyzeOptions{})
		require.ErrorContains(t, err, "failed to load configuration")
	})

	t.Run("invalid color", func(t *testing.T) {
		newWorkspace(t)
		h := newHarness(t)

		err := h.app.Analyze(t.Context(), app.AnalyzeOptions{Color: "rainbow"})
		require.ErrorContains(t, err, domain.ErrInvalidColorMode.Error())
	})
}

func TestApp_Style(t *testing.T) {
	newWorkspace(t)
	h := newHarness(t)

	err := h.app.Style(t.Context(), "a.py", app.StyleOptions{Color: "never"})
	require.NoError(t, err)

	assert.Equal(t, "1:1-1:2\tvariable\t\"x\"\n1:5-1:6\tnumber\t\"1\"\n", h.stdout.String())
}

func TestApp_Style_Errors(t *testing.T) {
	root := newWorkspace(t)
	writeFile(t, root, "notes.txt", "hello")
	h := newHarness(t)

	err := h.app.Style(t.Context(), "notes.txt", app.StyleOptions{})
	require.ErrorContains(t, err, domain.ErrDocumentNotInProject.Error())

	// A broken document has no styled spans.
	require.NoError(t, h.app.Style(t.Context(), "b.py", app.StyleOptions{JSON: true}))
	var styling domain.Styling
	require.NoError(t, json.Unmarshal([]byte(h.stdout.String()), &styling))
	assert.Equal(t, "b.py", styling.Path)
	assert.Empty(t, styling.Spans)
}

func TestApp_Clean(t *testing.T) {
	root := newWorkspace(t)
	h := newHarness(t)
	require.NoError(t, h.app.Analyze(t.Context(), app.AnalyzeOptions{Color: "never"}))

	h.logger.EXPECT().Info("removing file store...").Times(1)
	h.logger.EXPECT().Info("removed file store").Times(1)

	require.NoError(t, h.app.Clean(t.Context()))

	_, err := os.Stat(filepath.Join(root, domain.DefaultStorePath()))
	assert.True(t, os.IsNotExist(err))
}

func TestApp_Watch(t *testing.T) {
	root := newWorkspace(t)
	h := newHarness(t)
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	events := make(chan ports.WatchEvent)
	h.watcher.EXPECT().Start(gomock.Any(), root).Return(nil)
	h.watcher.EXPECT().Stop().Return(nil)
	h.watcher.EXPECT().Events().Return(func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(ctx, app.WatchOptions{
			AnalyzeOptions: app.AnalyzeOptions{Color: "never"},
			Window:         10 * time.Millisecond,
		})
	}()

	reports := func() int { return strings.Count(h.stdout.String(), "● demo") }
	require.Eventually(t, func() bool { return reports() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, h.stdout.String(), "✗ b.py parse-failed")

	// Fixing the broken document triggers a new cycle.
	writeFile(t, root, "b.py", "y = 2\n")
	events <- ports.WatchEvent{Path: filepath.Join(root, "b.py"), Operation: ports.OpWrite}

	require.Eventually(t, func() bool { return reports() == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, h.stdout.String(), "✓ b.py ok")

	cancel()
	require.NoError(t, <-done)
	close(events)
}

func TestApp_Watch_QuittingTheTUIEndsTheWatch(t *testing.T) {
	root := newWorkspace(t)
	h := newHarness(t)
	h.app.WithTeaOptions(
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)

	events := make(chan ports.WatchEvent)
	defer close(events)
	h.watcher.EXPECT().Start(gomock.Any(), root).Return(nil)
	h.watcher.EXPECT().Stop().Return(nil)
	h.watcher.EXPECT().Events().Return(func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	}).AnyTimes()

	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(t.Context(), app.WatchOptions{
			AnalyzeOptions: app.AnalyzeOptions{Color: "never"},
			UI:             "tui",
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not end after quitting the TUI")
	}
	assert.Empty(t, h.stdout.String(), "the TUI replaces the line report")
}

func TestApp_Watch_InvalidUI(t *testing.T) {
	newWorkspace(t)
	h := newHarness(t)

	err := h.app.Watch(t.Context(), app.WatchOptions{UI: "fancy"})
	require.ErrorContains(t, err, domain.ErrInvalidUIMode.Error())
}
