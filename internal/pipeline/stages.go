package pipeline

import (
	"cmp"
	"errors"
	"maps"
	"path/filepath"
	"slices"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Constructors of the terms the pipeline hands to the generator.
const (
	ConProgram  = "Program"
	ConDocument = "Document"
	ConFile     = "File"
)

const msgFileMissing = "file does not exist"

func (p *Pipeline) compileGenerator(ec *scheduler.ExecContext, in GeneratorInput) (*domain.GeneratorArtifact, error) {
	lang, ok := p.languages[in.Definition]
	if !ok {
		return nil, zerr.With(zerr.With(domain.ErrMissingLanguage, "language", in.Language), "definition", in.Definition)
	}
	if _, err := ec.RequireStamped(lang.DefinitionPath, domain.StampFileContent); err != nil {
		return nil, err
	}
	if _, err := ec.RequireStamped(domain.ListingResource(in.Dir, nil), domain.StampDirListing); err != nil {
		return nil, err
	}

	for _, entry := range []string{domain.EntryGlobal, domain.EntryDocument} {
		if _, ok := lang.EntryPoints[entry]; !ok {
			return nil, zerr.With(domain.ErrEntryPointMissing, "entry_point", entry)
		}
	}

	sources := ports.GeneratorSources{Language: lang.Name, Scripts: make(map[string][]byte, len(lang.EntryPoints))}
	for _, entry := range slices.Sorted(maps.Keys(lang.EntryPoints)) {
		script := filepath.Join(in.Dir, filepath.FromSlash(lang.EntryPoints[entry]))
		st, err := ec.RequireStamped(script, domain.StampFileContent)
		if err != nil {
			return nil, err
		}
		if st.Value == domain.AbsentStampValue {
			return nil, zerr.With(zerr.With(domain.ErrEntryPointMissing, "entry_point", entry), "script", script)
		}
		src, err := p.deps.FS.ReadFile(script)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "script", script)
		}
		sources.Scripts[entry] = src
	}

	artifact, err := p.deps.Builder.Build(ec.Context(), sources)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

func (p *Pipeline) listDocuments(ec *scheduler.ExecContext, in ProjectInput) ([]string, error) {
	proj, err := p.project(in.Project)
	if err != nil {
		return nil, err
	}
	if proj.ConfigPath != "" {
		if _, err := ec.RequireStamped(proj.ConfigPath, domain.StampFileContent); err != nil {
			return nil, err
		}
	}
	if _, err := ec.RequireStamped(domain.ListingResource(proj.Root, proj.Language.Extensions), domain.StampDirListing); err != nil {
		return nil, err
	}

	files, err := p.deps.FS.ListFiles(proj.Root, func(rel string) bool {
		return proj.Language.HasExtension(rel) && !excluded(proj, rel)
	})
	if err != nil {
		return nil, err
	}
	return domain.SortedPaths(files), nil
}

// parse never fails: a document that cannot be read or parsed yields a result without a tree.
func (p *Pipeline) parse(ec *scheduler.ExecContext, in DocumentInput) (*domain.ParseResult, error) {
	proj, err := p.project(in.Project)
	if err != nil {
		return nil, err
	}
	if err := requireLanguage(ec, proj); err != nil {
		return nil, err
	}

	abs := documentPath(proj, in.Path)
	st, err := ec.RequireStamped(abs, proj.DocumentStampKind())
	if err != nil {
		return nil, err
	}
	if st.Value == domain.AbsentStampValue {
		return &domain.ParseResult{Path: in.Path, Messages: []domain.Message{domain.ErrorMessage(msgFileMissing)}}, nil
	}

	src, err := p.deps.FS.ReadFile(abs)
	if err != nil {
		return &domain.ParseResult{Path: in.Path, Messages: []domain.Message{domain.ErrorMessage(err.Error())}}, nil
	}

	res, err := p.deps.Parser.Parse(ec.Context(), proj.Language.Grammar, in.Path, src)
	if err != nil {
		if ctxErr := ec.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return &domain.ParseResult{Path: in.Path, Messages: []domain.Message{domain.ErrorMessage(err.Error())}}, nil
	}
	res.Path = in.Path
	return res, nil
}

func (p *Pipeline) cgenGlobal(ec *scheduler.ExecContext, in ProjectInput) (*domain.GlobalResult, error) {
	proj, err := p.project(in.Project)
	if err != nil {
		return nil, err
	}
	files, err := scheduler.Require(ec, p.ListDocuments, in)
	if err != nil {
		return nil, err
	}
	artifact, err := scheduler.Require(ec, p.CompileGenerator, p.generatorInput(proj))
	if err != nil {
		return nil, err
	}

	inputs := make([]DocumentInput, len(files))
	for i, f := range files {
		inputs[i] = DocumentInput{Project: in.Project, Path: f}
	}
	parsed, err := scheduler.RequireEach(ec, p.Parse, inputs, p.parallelism)
	if err != nil {
		return nil, err
	}

	program := &domain.Term{Constructor: ConProgram}
	contributors := make([]string, 0, len(parsed))
	for i, r := range parsed {
		if r.Err != nil || r.Value.Failed() {
			continue
		}
		program.Children = append(program.Children, &domain.Term{
			Constructor: ConDocument,
			Value:       files[i],
			Children:    []*domain.Term{r.Value.Tree},
		})
		contributors = append(contributors, files[i])
	}

	constraints, err := p.deps.Engine.Run(ec.Context(), artifact, domain.EntryGlobal, map[string]*domain.Term{"program": program})
	if err != nil {
		if ctxErr := ec.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrGlobalAnalysisFailed.Error()), "project", in.Project)
	}

	return &domain.GlobalResult{
		Project:      in.Project,
		Constraints:  constraints,
		Contributors: contributors,
	}, nil
}

func (p *Pipeline) cgenDocument(ec *scheduler.ExecContext, in DocumentInput) (*domain.DocumentConstraints, error) {
	proj, err := p.project(in.Project)
	if err != nil {
		return nil, err
	}
	parsed, err := scheduler.Require(ec, p.Parse, in)
	if err != nil {
		return nil, err
	}
	if parsed.Failed() {
		return &domain.DocumentConstraints{Path: in.Path, Status: domain.StatusParseFailed, Messages: parsed.Messages}, nil
	}

	global, err := scheduler.Require(ec, p.CGenGlobal, ProjectInput{Project: in.Project})
	if err != nil {
		return nil, err
	}
	artifact, err := scheduler.Require(ec, p.CompileGenerator, p.generatorInput(proj))
	if err != nil {
		return nil, err
	}

	constraints, err := p.deps.Engine.Run(ec.Context(), artifact, domain.EntryDocument, map[string]*domain.Term{
		"tree":   parsed.Tree,
		"global": global.Constraints,
		"file":   {Constructor: ConFile, Value: in.Path},
	})
	if err != nil {
		if ctxErr := ec.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.deps.Logger.Warn("constraint generation failed for " + in.Path + ": " + err.Error())
		return &domain.DocumentConstraints{
			Path:     in.Path,
			Status:   domain.StatusAnalysisFailed,
			Messages: slices.Concat(parsed.Messages, []domain.Message{domain.ErrorMessage(err.Error())}),
		}, nil
	}

	return &domain.DocumentConstraints{
		Path:        in.Path,
		Status:      domain.StatusOK,
		Constraints: constraints,
		Messages:    parsed.Messages,
	}, nil
}

func (p *Pipeline) csolveGlobal(ec *scheduler.ExecContext, in ProjectInput) (*domain.GlobalSolution, error) {
	global, err := scheduler.Require(ec, p.CGenGlobal, in)
	if err != nil {
		return nil, err
	}
	bindings, err := p.deps.Solver.Solve(ec.Context(), global.Constraints, nil)
	if err != nil {
		if ctxErr := ec.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrGlobalAnalysisFailed.Error()), "project", in.Project)
	}
	return &domain.GlobalSolution{Project: in.Project, Bindings: bindings}, nil
}

func (p *Pipeline) csolveDocument(ec *scheduler.ExecContext, in DocumentInput) (*domain.DocumentResult, error) {
	doc, err := scheduler.Require(ec, p.CGenDocument, in)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusOK {
		return &domain.DocumentResult{Path: in.Path, Status: doc.Status, Messages: doc.Messages}, nil
	}

	global, err := scheduler.Require(ec, p.CSolveGlobal, ProjectInput{Project: in.Project})
	if err != nil {
		return nil, err
	}
	bindings, err := p.deps.Solver.Solve(ec.Context(), doc.Constraints, global.Bindings)
	if err != nil {
		if ctxErr := ec.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.deps.Logger.Warn("constraint solving failed for " + in.Path + ": " + err.Error())
		return &domain.DocumentResult{
			Path:     in.Path,
			Status:   domain.StatusAnalysisFailed,
			Messages: slices.Concat(doc.Messages, []domain.Message{domain.ErrorMessage(err.Error())}),
		}, nil
	}

	return &domain.DocumentResult{Path: in.Path, Status: domain.StatusOK, Bindings: bindings, Messages: doc.Messages}, nil
}

func (p *Pipeline) csolveFinal(ec *scheduler.ExecContext, in ProjectInput) (*domain.FinalResult, error) {
	files, err := scheduler.Require(ec, p.ListDocuments, in)
	if err != nil {
		return nil, err
	}
	inputs := make([]DocumentInput, len(files))
	for i, f := range files {
		inputs[i] = DocumentInput{Project: in.Project, Path: f}
	}
	docs, err := scheduler.RequireEach(ec, p.CSolveDocument, inputs, p.parallelism)
	if err != nil {
		return nil, err
	}

	final := &domain.FinalResult{
		Project:      in.Project,
		GlobalStatus: domain.StatusOK,
		Documents:    make([]*domain.DocumentResult, len(files)),
		Bindings:     domain.Bindings{},
	}

	global, err := scheduler.Require(ec, p.CSolveGlobal, in)
	switch {
	case err == nil:
		final.Bindings = final.Bindings.Merge(global.Bindings)
	case errors.Is(err, domain.ErrTaskFailed):
		final.GlobalStatus = domain.StatusAnalysisFailed
		final.GlobalError = err.Error()
	default:
		return nil, err
	}

	for i, r := range docs {
		doc := r.Value
		if r.Err != nil {
			doc = &domain.DocumentResult{
				Path:     files[i],
				Status:   domain.StatusUnavailable,
				Messages: []domain.Message{domain.ErrorMessage(r.Err.Error())},
			}
		}
		final.Documents[i] = doc
		if !doc.OK() {
			final.Failed = append(final.Failed, doc.Path)
			continue
		}
		final.Bindings = final.Bindings.Merge(doc.Bindings)
	}
	return final, nil
}

func (p *Pipeline) style(ec *scheduler.ExecContext, in DocumentInput) (*domain.Styling, error) {
	proj, err := p.project(in.Project)
	if err != nil {
		return nil, err
	}
	if err := requireLanguage(ec, proj); err != nil {
		return nil, err
	}
	parsed, err := scheduler.Require(ec, p.Parse, in)
	if err != nil {
		return nil, err
	}

	styling := &domain.Styling{Path: in.Path, Spans: []domain.StyledSpan{}}
	if parsed.Failed() {
		return styling, nil
	}
	styling.Spans = styleSpans(parsed.Tree, proj.Language.Styles, styling.Spans)
	slices.SortStableFunc(styling.Spans, func(a, b domain.StyledSpan) int {
		return cmp.Or(
			cmp.Compare(a.Span.StartByte, b.Span.StartByte),
			cmp.Compare(b.Span.EndByte, a.Span.EndByte),
		)
	})
	return styling, nil
}

// styleSpans collects the outermost styled nodes of t.
func styleSpans(t *domain.Term, styles map[string]string, out []domain.StyledSpan) []domain.StyledSpan {
	if t == nil {
		return out
	}
	if category, ok := styles[t.Constructor]; ok && t.Span != nil {
		return append(out, domain.StyledSpan{Span: *t.Span, Category: category})
	}
	for _, c := range t.Children {
		out = styleSpans(c, styles, out)
	}
	return out
}
