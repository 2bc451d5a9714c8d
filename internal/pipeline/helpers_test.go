package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/cas"
	"go.trai.ch/sift/internal/adapters/fs"
	"go.trai.ch/sift/internal/adapters/telemetry"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/core/ports/mocks"
	"go.trai.ch/sift/internal/engine/scheduler"
	"go.trai.ch/sift/internal/pipeline"
	"go.uber.org/mock/gomock"
)

const project = "toy"

// harness runs the pipeline over a toy language on a temporary project.
// A document is a list of words; a '!' is a syntax error and the word "boom"
// makes the generator fail on the document.
type harness struct {
	root    string
	lang    *domain.Language
	proj    *domain.Project
	store   ports.Store
	parser  *mocks.MockParser
	builder *mocks.MockGeneratorBuilder
	engine  *mocks.MockRewriteEngine
	solver  *mocks.MockSolver
	logger  *mocks.MockLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	ctrl := gomock.NewController(t)

	genDir := filepath.Join(root, "generator")
	h := &harness{
		root: root,
		lang: &domain.Language{
			Name:           "toy",
			DefinitionPath: filepath.Join(root, "toy"+domain.LanguageFileSuffix),
			Extensions:     []string{".lang"},
			Grammar:        "toy",
			GeneratorDir:   genDir,
			EntryPoints: map[string]string{
				domain.EntryGlobal:   "global.risor",
				domain.EntryDocument: "document.risor",
			},
			Styles: map[string]string{"keyword": "keyword", "ident": "variable"},
		},
		parser:  mocks.NewMockParser(ctrl),
		builder: mocks.NewMockGeneratorBuilder(ctrl),
		engine:  mocks.NewMockRewriteEngine(ctrl),
		solver:  mocks.NewMockSolver(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}
	h.proj = &domain.Project{
		Name:       project,
		Root:       filepath.Join(root, "src"),
		ConfigPath: filepath.Join(root, "src", domain.ProjectFileName),
		Language:   h.lang,
	}

	h.write(t, h.lang.DefinitionPath, "language toy {}")
	h.write(t, filepath.Join(genDir, "global.risor"), "global")
	h.write(t, filepath.Join(genDir, "document.risor"), "document")
	h.write(t, h.proj.ConfigPath, "language: toy")

	store, err := cas.NewStore(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err)
	h.store = store

	h.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return h
}

func (h *harness) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func (h *harness) doc(t *testing.T, rel, content string) {
	t.Helper()
	h.write(t, filepath.Join(h.proj.Root, rel), content)
}

// toyDeps wires the mocks with the toy language behavior. Expectations may be
// tightened by the caller before the first build.
func (h *harness) toyDeps() {
	h.parser.EXPECT().Parse(gomock.Any(), "toy", gomock.Any(), gomock.Any()).DoAndReturn(toyParse).AnyTimes()
	h.builder.EXPECT().Build(gomock.Any(), gomock.Any()).DoAndReturn(toyBuild).AnyTimes()
	h.engine.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(toyRun).AnyTimes()
	h.solver.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(toySolve).AnyTimes()
}

func (h *harness) pipeline(opts ...pipeline.Option) *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		FS:      fs.NewFileSystem(fs.NewWalker()),
		Parser:  h.parser,
		Builder: h.builder,
		Engine:  h.engine,
		Solver:  h.solver,
		Logger:  h.logger,
	}, []*domain.Project{h.proj}, opts...)
}

func (h *harness) scheduler(t *testing.T, p *pipeline.Pipeline) *scheduler.Scheduler {
	t.Helper()
	registry, err := p.Registry()
	require.NoError(t, err)
	return scheduler.New(registry, h.store, fs.Stampers(fs.NewWalker()), telemetry.NewNoOpTracer(), h.logger)
}

func analyze(t *testing.T, sess *scheduler.Session, p *pipeline.Pipeline) *domain.FinalResult {
	t.Helper()
	final, err := scheduler.Build(t.Context(), sess, p.CSolveFinal, pipeline.ProjectInput{Project: project})
	require.NoError(t, err)
	return final
}

func statuses(final *domain.FinalResult) map[string]domain.DocumentStatus {
	out := make(map[string]domain.DocumentStatus, len(final.Documents))
	for _, d := range final.Documents {
		out[d.Path] = d.Status
	}
	return out
}

// executed reports whether the session executed the task def(input).
func executed[I, O any](t *testing.T, sess *scheduler.Session, def *scheduler.TaskDef[I, O], input I) bool {
	t.Helper()
	key, err := def.Key(input)
	require.NoError(t, err)
	for _, k := range sess.Executed() {
		if k == key {
			return true
		}
	}
	return false
}

func docIn(path string) pipeline.DocumentInput {
	return pipeline.DocumentInput{Project: project, Path: path}
}

func toyParse(_ context.Context, _, path string, src []byte) (*domain.ParseResult, error) {
	text := string(src)
	if i := strings.IndexByte(text, '!'); i >= 0 {
		return &domain.ParseResult{
			Path: path,
			Messages: []domain.Message{{
				Severity: domain.SeverityError,
				Text:     "unexpected '!'",
				Span:     &domain.Span{StartLine: 1, StartColumn: i + 1, EndLine: 1, EndColumn: i + 2, StartByte: i, EndByte: i + 1},
			}},
		}, nil
	}

	tree := &domain.Term{Constructor: "source", Span: &domain.Span{StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: len(text) + 1, EndByte: len(text)}}
	offset := 0
	for _, word := range strings.Fields(text) {
		start := offset + strings.Index(text[offset:], word)
		offset = start + len(word)
		con := "ident"
		if word == "let" {
			con = "keyword"
		}
		tree.Children = append(tree.Children, &domain.Term{
			Constructor: con,
			Value:       word,
			Span:        &domain.Span{StartLine: 1, StartColumn: start + 1, EndLine: 1, EndColumn: offset + 1, StartByte: start, EndByte: offset},
		})
	}
	return &domain.ParseResult{Path: path, Tree: tree}, nil
}

func toyBuild(_ context.Context, sources ports.GeneratorSources) (*domain.GeneratorArtifact, error) {
	artifact := &domain.GeneratorArtifact{Language: sources.Language, EntryPoints: map[string]string{}}
	for entry, src := range sources.Scripts {
		artifact.EntryPoints[entry] = string(src)
	}
	return artifact, nil
}

func toyRun(_ context.Context, _ *domain.GeneratorArtifact, entry string, args map[string]*domain.Term) (*domain.Term, error) {
	out := &domain.Term{Constructor: "Constraints"}
	switch entry {
	case domain.EntryGlobal:
		for _, doc := range args["program"].Children {
			out.Children = append(out.Children, &domain.Term{Constructor: "Decl", Value: doc.Value})
		}
	case domain.EntryDocument:
		for _, word := range args["tree"].Children {
			if word.Value == "boom" {
				return nil, domain.ErrEngineFailed
			}
		}
		out.Value = args["file"].Value
	}
	return out, nil
}

func toySolve(_ context.Context, constraints *domain.Term, _ domain.Bindings) (domain.Bindings, error) {
	b := domain.Bindings{}
	for _, c := range constraints.Children {
		b[c.Value] = "declared"
	}
	if constraints.Value != "" {
		b[constraints.Value] = "checked"
	}
	return b, nil
}
