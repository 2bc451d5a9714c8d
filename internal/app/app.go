// Package app implements the application layer for sift.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/sift/internal/adapters/detector"
	"go.trai.ch/sift/internal/adapters/linear"
	"go.trai.ch/sift/internal/adapters/telemetry"
	"go.trai.ch/sift/internal/adapters/tui"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/engine/scheduler"
	"go.trai.ch/sift/internal/pipeline"
	"go.trai.ch/sift/internal/ui/output"
	"go.trai.ch/sift/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Analyzers groups the adapters the pipeline stages call.
type Analyzers struct {
	FileSystem ports.FileSystem
	Stampers   []ports.Stamper
	Parser     ports.Parser
	Builder    ports.GeneratorBuilder
	Engine     ports.RewriteEngine
	Solver     ports.Solver
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	analyzers    Analyzers
	stores       ports.StoreOpener
	watcher      ports.Watcher
	stdout       io.Writer
	stderr       io.Writer
	parallelism  int
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	analyzers Analyzers,
	stores ports.StoreOpener,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		analyzers:    analyzers,
		stores:       stores,
		watcher:      watcher,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		parallelism:  runtime.NumCPU(),
	}
}

// WithOutput redirects the report and progress output.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithTeaOptions adds Bubble Tea program options to the watch TUI.
// This is primarily used for testing.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// AnalyzeOptions configuration for the Analyze method.
type AnalyzeOptions struct {
	// Projects restricts the analysis to the named projects. Empty selects all.
	Projects []string
	NoCache  bool
	JSON     bool
	Verbose  bool
	Strict   bool
	Color    string
}

// verbosity is implemented by loggers that can show debug records.
type verbosity interface {
	SetVerbose(enable bool)
}

// Analyze runs the analysis of the selected projects and reports the results.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	ws, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	projects, err := selectProjects(ws, opts.Projects)
	if err != nil {
		return err
	}

	run, err := a.newRun(ctx, ws, opts, false)
	if err != nil {
		return err
	}
	defer run.close(ctx)

	results, err := run.analyze(ctx, projects, opts.NoCache)
	if err != nil {
		return err
	}
	return a.report(run.renderer, results, opts)
}

// run holds what one analyze or watch invocation shares across builds.
type run struct {
	app      *App
	store    ports.Store
	renderer ports.Renderer
	tracer   ports.Tracer
	provider *sdktrace.TracerProvider
	ws       *domain.Workspace
	// ui is the watch TUI, nil when output is line-oriented.
	ui *tui.Renderer
}

// newRun prepares the store, renderer and tracing of one invocation. An
// interactive run renders to the TUI, which the caller starts.
func (a *App) newRun(ctx context.Context, ws *domain.Workspace, opts AnalyzeOptions, interactive bool) (*run, error) {
	if v, ok := a.logger.(verbosity); ok {
		// Debug records would tear through the TUI.
		v.SetVerbose(opts.Verbose && !interactive)
	}

	mode, err := detector.ResolveMode(detector.DetectEnvironment(), opts.Color)
	if err != nil {
		return nil, err
	}

	var renderer ports.Renderer
	var ui *tui.Renderer
	if interactive {
		model := tui.NewModel(ws.Root, detector.Profile(mode))
		teaOpts := append([]tea.ProgramOption{
			tea.WithContext(ctx),
			tea.WithOutput(a.stdout),
			tea.WithAltScreen(),
		}, a.teaOptions...)
		ui = tui.NewRenderer(&model, teaOpts...)
		renderer = ui
	} else {
		renderer = linear.NewRenderer(a.stdout, a.stderr,
			linear.WithVerbose(opts.Verbose),
			linear.WithProfile(detector.Profile(mode)),
		)
	}

	store, err := a.stores.Open(ws.Root, ws.Store)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open store"), "root", ws.Root)
	}

	// Spans reach the renderer through the bridge.
	provider := setupOTel(telemetry.NewBridge(renderer))

	return &run{
		app:      a,
		store:    store,
		renderer: renderer,
		tracer:   telemetry.NewOTelTracerFrom(provider, "sift"),
		provider: provider,
		ws:       ws,
		ui:       ui,
	}, nil
}

func (r *run) close(ctx context.Context) {
	if r.ui != nil {
		_ = r.ui.Stop()
		if err := r.ui.Wait(); err != nil {
			r.app.logger.Error(zerr.Wrap(err, "watch view failed"))
		}
	}
	_ = r.provider.Shutdown(ctx)
	if err := r.store.Close(); err != nil {
		r.app.logger.Error(err)
	}
}

// scheduler creates the pipeline and scheduler for the current workspace.
// Both are cheap; the incremental state lives in the store.
func (r *run) scheduler() (*pipeline.Pipeline, *scheduler.Scheduler, error) {
	an := r.app.analyzers
	p := pipeline.New(pipeline.Deps{
		FS:      an.FileSystem,
		Parser:  an.Parser,
		Builder: an.Builder,
		Engine:  an.Engine,
		Solver:  an.Solver,
		Logger:  r.app.logger,
	}, r.ws.Projects, pipeline.WithParallelism(r.app.parallelism))

	registry, err := p.Registry()
	if err != nil {
		return nil, nil, err
	}
	return p, scheduler.New(registry, r.store, an.Stampers, r.tracer, r.app.logger), nil
}

// analyze builds the final result of every project in one session.
func (r *run) analyze(ctx context.Context, projects []*domain.Project, noCache bool) ([]*domain.FinalResult, error) {
	p, sched, err := r.scheduler()
	if err != nil {
		return nil, err
	}

	var sessOpts []scheduler.SessionOption
	if noCache {
		sessOpts = append(sessOpts, scheduler.WithNoCache())
	}
	sess := sched.NewSession(sessOpts...)

	results := make([]*domain.FinalResult, len(projects))
	failures := make([]error, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	for i, proj := range projects {
		g.Go(func() error {
			final, err := scheduler.Build(gctx, sess, p.CSolveFinal, pipeline.ProjectInput{Project: proj.Name})
			switch {
			case err == nil:
				results[i] = final
			case scheduler.IsFault(err):
				return zerr.With(zerr.Wrap(err, domain.ErrAnalysisAborted.Error()), "project", proj.Name)
			default:
				failures[i] = zerr.With(err, "project", proj.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.app.logger.Debug(fmt.Sprintf("session %d executed %d task(s), reused %d", sess.ID(), len(sess.Executed()), sess.Reused()))

	if err := errors.Join(failures...); err != nil {
		return nil, zerr.Wrap(err, domain.ErrAnalysisAborted.Error())
	}
	return results, nil
}

func (a *App) report(renderer ports.Renderer, results []*domain.FinalResult, opts AnalyzeOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return zerr.Wrap(err, "failed to encode report")
		}
	} else {
		for _, res := range results {
			renderer.OnReport(res)
		}
		if err := renderer.Flush(); err != nil {
			return zerr.Wrap(err, "failed to write report")
		}
	}

	if !opts.Strict {
		return nil
	}
	failed := 0
	for _, res := range results {
		failed += len(res.Failed)
	}
	if failed > 0 {
		return zerr.With(zerr.Wrap(domain.ErrAnalysisDegraded, "strict analysis"), "failed_documents", failed)
	}
	return nil
}

func selectProjects(ws *domain.Workspace, names []string) ([]*domain.Project, error) {
	if len(names) == 0 {
		return ws.Projects, nil
	}
	projects := make([]*domain.Project, 0, len(names))
	for _, name := range names {
		proj, ok := ws.Project(name)
		if !ok {
			return nil, zerr.With(domain.ErrProjectNotFound, "project", name)
		}
		if !slices.Contains(projects, proj) {
			projects = append(projects, proj)
		}
	}
	return projects, nil
}

// StyleOptions configuration for the Style method.
type StyleOptions struct {
	JSON  bool
	Color string
}

// Style prints the styled spans of a document.
func (a *App) Style(ctx context.Context, file string, opts StyleOptions) error {
	ws, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "file", file)
	}
	proj, rel, ok := owningProject(ws, abs)
	if !ok {
		return zerr.With(domain.ErrDocumentNotInProject, "file", file)
	}

	r, err := a.newRun(ctx, ws, AnalyzeOptions{Color: opts.Color}, false)
	if err != nil {
		return err
	}
	defer r.close(ctx)

	p, sched, err := r.scheduler()
	if err != nil {
		return err
	}
	styling, err := scheduler.Build(ctx, sched.NewSession(), p.Style, pipeline.DocumentInput{Project: proj.Name, Path: rel})
	if err != nil {
		if scheduler.IsFault(err) {
			return zerr.Wrap(err, domain.ErrAnalysisAborted.Error())
		}
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(styling)
	}

	src, err := a.analyzers.FileSystem.ReadFile(abs)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "file", file)
	}
	mode, _ := detector.ResolveMode(detector.DetectEnvironment(), opts.Color)
	out := output.NewWithProfile(a.stdout, detector.Profile(mode))
	for _, s := range styling.Spans {
		text := ""
		if s.Span.StartByte >= 0 && s.Span.EndByte <= len(src) && s.Span.StartByte <= s.Span.EndByte {
			text = string(src[s.Span.StartByte:s.Span.EndByte])
		}
		category := out.String(s.Category).Foreground(out.Color(string(style.Category(s.Category)))).String()
		_, _ = fmt.Fprintf(a.stdout, "%d:%d-%d:%d\t%s\t%q\n",
			s.Span.StartLine, s.Span.StartColumn, s.Span.EndLine, s.Span.EndColumn, category, text)
	}
	return nil
}

// owningProject returns the project whose root contains path and whose language
// handles it, with path relative to that root.
func owningProject(ws *domain.Workspace, path string) (*domain.Project, string, bool) {
	for _, proj := range ws.Projects {
		rel, err := filepath.Rel(proj.Root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		if proj.Language.HasExtension(rel) {
			return proj, rel, true
		}
	}
	return nil, "", false
}

// Clean removes the persisted incremental state of the workspace.
func (a *App) Clean(_ context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to determine working directory")
	}
	root, err := a.configLoader.DiscoverRoot(cwd)
	if err != nil {
		return err
	}

	var errs error
	remove := func(path string, name string) {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return
		}
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(filepath.Join(root, domain.DefaultStorePath()), "file store")
	remove(filepath.Join(root, domain.DefaultStoreDBPath()), "sqlite store")
	return errs
}


// setupOTel creates a tracer provider reporting every span to the renderer bridge.
func setupOTel(bridge *telemetry.Bridge) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
}
