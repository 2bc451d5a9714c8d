package app

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/sift/internal/adapters/detector"
	"go.trai.ch/sift/internal/adapters/watcher"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	AnalyzeOptions
	// Window is the quiet period after the last change before re-analyzing.
	Window time.Duration
	// UI is "auto", "tui" or "plain". Auto shows the TUI on an interactive
	// terminal. JSON output is always plain.
	UI string
}

// Watch analyzes the workspace and re-analyzes it whenever files change, until
// ctx is canceled or the user quits the TUI. Only tasks affected by a change
// re-execute.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ws, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	interactive, err := detector.ResolveUI(detector.DetectInteractive(), opts.UI)
	if err != nil {
		return err
	}
	interactive = interactive && !opts.JSON

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r, err := a.newRun(ctx, ws, opts.AnalyzeOptions, interactive)
	if err != nil {
		return err
	}
	defer r.close(ctx)

	if r.ui != nil {
		if err := r.ui.Start(ctx); err != nil {
			return err
		}
		go func() {
			<-r.ui.Done()
			cancel()
		}()
	}

	a.cycle(ctx, r, opts.AnalyzeOptions, nil)

	if err := a.watcher.Start(ctx, ws.Root); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start watcher"), "root", ws.Root)
	}
	defer func() { _ = a.watcher.Stop() }()

	window := opts.Window
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	// One queued batch is enough: every cycle checks the whole workspace.
	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		select {
		case changes <- paths:
		default:
		}
	})
	defer debouncer.Stop()

	go forward(a.watcher, debouncer)

	if r.ui == nil {
		a.logger.Info(fmt.Sprintf("watching %s", ws.Root))
	}
	cycleOpts := opts.AnalyzeOptions
	cycleOpts.NoCache = false
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			// Language definitions and project files may have changed.
			reloaded, err := a.configLoader.Load(ws.Root)
			if err != nil {
				a.cycleFailed(r, err)
				continue
			}
			r.ws = reloaded
			a.cycle(ctx, r, cycleOpts, paths)
		}
	}
}

func forward(w ports.Watcher, d *watcher.Debouncer) {
	for ev := range w.Events() {
		d.Add(ev.Path)
	}
}

// cycle runs one analysis and reports it. Errors are reported; they do not end the watch.
func (a *App) cycle(ctx context.Context, r *run, opts AnalyzeOptions, changed []string) {
	switch {
	case r.ui != nil:
		r.ui.OnCycleStart(changed)
	case len(changed) > 0:
		a.logger.Info(fmt.Sprintf("%d file(s) changed, re-analyzing", len(changed)))
	}

	projects, err := selectProjects(r.ws, opts.Projects)
	if err != nil {
		a.cycleFailed(r, err)
		return
	}
	results, err := r.analyze(ctx, projects, opts.NoCache)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.cycleFailed(r, err)
		return
	}

	opts.Strict = false
	if err := a.report(r.renderer, results, opts); err != nil {
		a.cycleFailed(r, err)
	}
}

func (a *App) cycleFailed(r *run, err error) {
	if r.ui != nil {
		r.ui.OnCycleError(err)
		return
	}
	a.logger.Error(err)
}
