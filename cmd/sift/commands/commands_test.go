package commands_test

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/cmd/sift/commands"
	"go.trai.ch/sift/internal/adapters/watcher"
	"go.trai.ch/sift/internal/app"
	"go.trai.ch/sift/internal/build"
)

type mockApp struct {
	analyzeFunc func(ctx context.Context, opts app.AnalyzeOptions) error
	watchFunc   func(ctx context.Context, opts app.WatchOptions) error
	styleFunc   func(ctx context.Context, file string, opts app.StyleOptions) error
	cleanFunc   func(ctx context.Context) error
}

func (m *mockApp) Analyze(ctx context.Context, opts app.AnalyzeOptions) error {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Style(ctx context.Context, file string, opts app.StyleOptions) error {
	if m.styleFunc != nil {
		return m.styleFunc(ctx, file, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx)
	}
	return nil
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(t.Context())
	return buf.String(), err
}

func TestCommands_Analyze(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.AnalyzeOptions
		called := false
		mock := &mockApp{
			analyzeFunc: func(_ context.Context, opts app.AnalyzeOptions) error {
				captured = opts
				called = true
				return nil
			},
		}

		_, err := execute(t, mock, "analyze", "core", "web", "--no-cache", "--json", "--strict", "-v", "--color", "never")
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, app.AnalyzeOptions{
			Projects: []string{"core", "web"},
			NoCache:  true,
			JSON:     true,
			Verbose:  true,
			Strict:   true,
			Color:    "never",
		}, captured)
	})

	t.Run("defaults", func(t *testing.T) {
		var captured app.AnalyzeOptions
		mock := &mockApp{
			analyzeFunc: func(_ context.Context, opts app.AnalyzeOptions) error {
				captured = opts
				return nil
			},
		}

		_, err := execute(t, mock, "analyze")
		require.NoError(t, err)
		assert.Empty(t, captured.Projects)
		assert.False(t, captured.NoCache)
		assert.False(t, captured.Strict)
		assert.Equal(t, "auto", captured.Color)
	})

	t.Run("returns error on analyze failure", func(t *testing.T) {
		mock := &mockApp{
			analyzeFunc: func(_ context.Context, _ app.AnalyzeOptions) error {
				return errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "analyze")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Watch(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.WatchOptions
		mock := &mockApp{
			watchFunc: func(_ context.Context, opts app.WatchOptions) error {
				captured = opts
				return nil
			},
		}

		_, err := execute(t, mock, "watch", "core", "--debounce", "250ms", "--json", "--ui", "plain")
		require.NoError(t, err)
		assert.Equal(t, []string{"core"}, captured.Projects)
		assert.True(t, captured.JSON)
		assert.Equal(t, "plain", captured.UI)
		assert.False(t, captured.Strict)
		assert.Equal(t, 250*time.Millisecond, captured.Window)
	})

	t.Run("default window", func(t *testing.T) {
		var captured app.WatchOptions
		mock := &mockApp{
			watchFunc: func(_ context.Context, opts app.WatchOptions) error {
				captured = opts
				return nil
			},
		}

		_, err := execute(t, mock, "watch")
		require.NoError(t, err)
		assert.Equal(t, watcher.DefaultDebounceWindow, captured.Window)
		assert.Equal(t, "auto", captured.UI)
	})

	t.Run("rejects strict", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "watch", "--strict")
		require.Error(t, err)
	})
}

func TestCommands_Style(t *testing.T) {
	t.Run("passes file and flags", func(t *testing.T) {
		var gotFile string
		var gotOpts app.StyleOptions
		mock := &mockApp{
			styleFunc: func(_ context.Context, file string, opts app.StyleOptions) error {
				gotFile = file
				gotOpts = opts
				return nil
			},
		}

		_, err := execute(t, mock, "style", "src/a.py", "--json")
		require.NoError(t, err)
		assert.Equal(t, "src/a.py", gotFile)
		assert.Equal(t, app.StyleOptions{JSON: true, Color: "auto"}, gotOpts)
	})

	t.Run("requires exactly one file", func(t *testing.T) {
		mock := &mockApp{
			styleFunc: func(_ context.Context, _ string, _ app.StyleOptions) error {
				panic("should not be called")
			},
		}

		_, err := execute(t, mock, "style")
		require.Error(t, err)
		_, err = execute(t, mock, "style", "a.py", "b.py")
		require.Error(t, err)
	})
}

func TestCommands_Clean(t *testing.T) {
	called := false
	mock := &mockApp{
		cleanFunc: func(_ context.Context) error {
			called = true
			return nil
		},
	}

	_, err := execute(t, mock, "clean")
	require.NoError(t, err)
	assert.True(t, called)

	_, err = execute(t, mock, "clean", "extra")
	require.Error(t, err)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sift version "+build.Version)
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)

	out, err = execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}

func TestCommands_VersionShort(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, build.Version+"\n", out)
}

func TestCommands_VersionRejectsArgs(t *testing.T) {
	_, err := execute(t, &mockApp{}, "version", "extra")
	require.Error(t, err)
}
