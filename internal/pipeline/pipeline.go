// Package pipeline defines the semantic-analysis stages as engine tasks.
//
// Every stage is a scheduler task: parsing, generator compilation, global and
// per-document constraint generation, solving, the final aggregation and styling.
// Stages depend on each other only through scheduler.Require, so the engine
// records the dependency graph while the stages run.
package pipeline

import (
	"path"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Task kinds of the pipeline stages.
const (
	KindCompileGenerator = "compile-generator"
	KindListDocuments    = "list-documents"
	KindParse            = "parse"
	KindCGenGlobal       = "cgen-global"
	KindCGenDocument     = "cgen-document"
	KindCSolveGlobal     = "csolve-global"
	KindCSolveDocument   = "csolve-document"
	KindCSolveFinal      = "csolve-final"
	KindStyle            = "style"
)

// ProjectInput is the input of the project-wide stages.
type ProjectInput struct {
	Project string `json:"project"`
}

// DocumentInput is the input of the per-document stages. Path is relative to the project root.
type DocumentInput struct {
	Project string `json:"project"`
	Path    string `json:"path"`
}

// GeneratorInput identifies the constraint generator of a language. Languages are
// identified by their definition file; two definitions may share a name.
type GeneratorInput struct {
	Language   string `json:"language"`
	Definition string `json:"definition"`
	Dir        string `json:"dir"`
}

// Deps are the collaborators of the pipeline stages.
type Deps struct {
	FS      ports.FileSystem
	Parser  ports.Parser
	Builder ports.GeneratorBuilder
	Engine  ports.RewriteEngine
	Solver  ports.Solver
	Logger  ports.Logger
}

// Pipeline holds the stage definitions of one workspace.
type Pipeline struct {
	deps        Deps
	projects    map[string]*domain.Project
	// languages is keyed by definition path.
	languages   map[string]*domain.Language
	parallelism int

	CompileGenerator *scheduler.TaskDef[GeneratorInput, *domain.GeneratorArtifact]
	ListDocuments    *scheduler.TaskDef[ProjectInput, []string]
	Parse            *scheduler.TaskDef[DocumentInput, *domain.ParseResult]
	CGenGlobal       *scheduler.TaskDef[ProjectInput, *domain.GlobalResult]
	CGenDocument     *scheduler.TaskDef[DocumentInput, *domain.DocumentConstraints]
	CSolveGlobal     *scheduler.TaskDef[ProjectInput, *domain.GlobalSolution]
	CSolveDocument   *scheduler.TaskDef[DocumentInput, *domain.DocumentResult]
	CSolveFinal      *scheduler.TaskDef[ProjectInput, *domain.FinalResult]
	Style            *scheduler.TaskDef[DocumentInput, *domain.Styling]
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParallelism bounds the number of documents analyzed at once.
func WithParallelism(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// New creates the pipeline stages for the given projects.
func New(deps Deps, projects []*domain.Project, opts ...Option) *Pipeline {
	p := &Pipeline{
		deps:        deps,
		projects:    make(map[string]*domain.Project, len(projects)),
		languages:   make(map[string]*domain.Language),
		parallelism: runtime.NumCPU(),
	}
	for _, proj := range projects {
		p.projects[proj.Name] = proj
		if proj.Language != nil {
			p.languages[proj.Language.DefinitionPath] = proj.Language
		}
	}
	for _, opt := range opts {
		opt(p)
	}

	p.CompileGenerator = scheduler.Define(KindCompileGenerator, p.compileGenerator)
	p.ListDocuments = scheduler.Define(KindListDocuments, p.listDocuments)
	p.Parse = scheduler.Define(KindParse, p.parse)
	p.CGenGlobal = scheduler.Define(KindCGenGlobal, p.cgenGlobal)
	p.CGenDocument = scheduler.Define(KindCGenDocument, p.cgenDocument)
	p.CSolveGlobal = scheduler.Define(KindCSolveGlobal, p.csolveGlobal)
	p.CSolveDocument = scheduler.Define(KindCSolveDocument, p.csolveDocument)
	p.CSolveFinal = scheduler.Define(KindCSolveFinal, p.csolveFinal)
	p.Style = scheduler.Define(KindStyle, p.style)
	return p
}

// Definitions returns every stage, ready to be registered.
func (p *Pipeline) Definitions() []scheduler.Definition {
	return []scheduler.Definition{
		p.CompileGenerator,
		p.ListDocuments,
		p.Parse,
		p.CGenGlobal,
		p.CGenDocument,
		p.CSolveGlobal,
		p.CSolveDocument,
		p.CSolveFinal,
		p.Style,
	}
}

// Registry returns a registry holding every stage.
func (p *Pipeline) Registry() (*scheduler.Registry, error) {
	return scheduler.NewRegistry(p.Definitions()...)
}

func (p *Pipeline) project(name string) (*domain.Project, error) {
	proj, ok := p.projects[name]
	if !ok {
		return nil, zerr.With(domain.ErrProjectNotFound, "project", name)
	}
	if proj.Language == nil {
		return nil, zerr.With(domain.ErrMissingLanguage, "project", name)
	}
	return proj, nil
}

func (p *Pipeline) generatorInput(proj *domain.Project) GeneratorInput {
	return GeneratorInput{
		Language:   proj.Language.Name,
		Definition: proj.Language.DefinitionPath,
		Dir:        proj.Language.GeneratorDir,
	}
}

// requireLanguage records the inputs deciding how documents of proj are read:
// the project file selecting the language and the language definition itself.
func requireLanguage(ec *scheduler.ExecContext, proj *domain.Project) error {
	if proj.ConfigPath != "" {
		if _, err := ec.RequireStamped(proj.ConfigPath, domain.StampFileContent); err != nil {
			return err
		}
	}
	_, err := ec.RequireStamped(proj.Language.DefinitionPath, domain.StampFileContent)
	return err
}

func documentPath(proj *domain.Project, rel string) string {
	return filepath.Join(proj.Root, filepath.FromSlash(rel))
}

func excluded(proj *domain.Project, rel string) bool {
	return slices.ContainsFunc(proj.Exclude, func(pattern string) bool {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		ok, _ := path.Match(pattern, path.Base(rel))
		return ok
	})
}
