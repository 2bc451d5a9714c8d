package domain

import (
	"slices"
	"strings"
)

// Term is the tree value exchanged between the parser, the rewriting engine and
// the solver. Leaves carry a Value; inner nodes carry Children.
type Term struct {
	Constructor string  `json:"con"`
	Value       string  `json:"val,omitempty"`
	Children    []*Term `json:"kids,omitempty"`
	Span        *Span   `json:"span,omitempty"`
}

// Span locates a term in its source document. Lines and columns are 1-based.
type Span struct {
	StartLine   int `json:"sl"`
	StartColumn int `json:"sc"`
	EndLine     int `json:"el"`
	EndColumn   int `json:"ec"`
	StartByte   int `json:"sb"`
	EndByte     int `json:"eb"`
}

// Walk visits the term and its descendants in pre-order until visit returns false.
func (t *Term) Walk(visit func(*Term) bool) bool {
	if t == nil {
		return true
	}
	if !visit(t) {
		return false
	}
	for _, c := range t.Children {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}

// Severity of a diagnostic message.
type Severity string

const (
	// SeverityError marks a message that makes a document fail.
	SeverityError Severity = "error"
	// SeverityWarning marks a message that does not affect the document status.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks an informational message.
	SeverityInfo Severity = "info"
)

// Message is a diagnostic attached to a document.
type Message struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
	Span     *Span    `json:"span,omitempty"`
}

// ErrorMessage creates an error-level message without a location.
func ErrorMessage(text string) Message {
	return Message{Severity: SeverityError, Text: text}
}

// ParseResult is the outcome of parsing one document. A nil Tree marks a parse failure.
type ParseResult struct {
	Path     string    `json:"path"`
	Tree     *Term     `json:"tree,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Failed reports whether parsing produced no tree.
func (r *ParseResult) Failed() bool {
	return r.Tree == nil
}

// GeneratorArtifact is a runnable constraint generator produced by the generator build.
type GeneratorArtifact struct {
	Language string `json:"language"`
	// EntryPoints maps an entry-point name to the program implementing it.
	EntryPoints map[string]string `json:"entryPoints"`
}

// GlobalResult holds the whole-project declarations visible to every document.
// It is never mutated after construction.
type GlobalResult struct {
	Project      string   `json:"project"`
	Constraints  *Term    `json:"constraints"`
	Contributors []string `json:"contributors"`
}

// Bindings maps a declared name to the type or target it was resolved to.
type Bindings map[string]string

// Merge returns a new Bindings holding b overlaid with other.
func (b Bindings) Merge(other Bindings) Bindings {
	out := make(Bindings, len(b)+len(other))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// GlobalSolution is the solved form of the global constraints.
type GlobalSolution struct {
	Project  string   `json:"project"`
	Bindings Bindings `json:"bindings"`
}

// DocumentStatus is the per-file analysis outcome.
type DocumentStatus string

const (
	// StatusOK means the document was analyzed successfully.
	StatusOK DocumentStatus = "ok"
	// StatusParseFailed means the document could not be parsed.
	StatusParseFailed DocumentStatus = "parse-failed"
	// StatusAnalysisFailed means the engine or the solver failed on the document.
	StatusAnalysisFailed DocumentStatus = "analysis-failed"
	// StatusUnavailable means the project-wide analysis the document depends on failed.
	StatusUnavailable DocumentStatus = "unavailable"
)

// DocumentConstraints is the output of constraint generation for one document.
type DocumentConstraints struct {
	Path        string         `json:"path"`
	Status      DocumentStatus `json:"status"`
	Constraints *Term          `json:"constraints,omitempty"`
	Messages    []Message      `json:"messages,omitempty"`
}

// DocumentResult is the per-file analysis outcome after solving.
type DocumentResult struct {
	Path     string         `json:"path"`
	Status   DocumentStatus `json:"status"`
	Bindings Bindings       `json:"bindings,omitempty"`
	Messages []Message      `json:"messages,omitempty"`
}

// OK reports whether the document was analyzed successfully.
func (r *DocumentResult) OK() bool {
	return r.Status == StatusOK
}

// FinalResult aggregates every document result of a project.
type FinalResult struct {
	Project      string            `json:"project"`
	GlobalStatus DocumentStatus    `json:"globalStatus"`
	GlobalError  string            `json:"globalError,omitempty"`
	Documents    []*DocumentResult `json:"documents"`
	Failed       []string          `json:"failed,omitempty"`
	Bindings     Bindings          `json:"bindings,omitempty"`
}

// Degraded reports whether at least one document did not analyze successfully.
func (r *FinalResult) Degraded() bool {
	return len(r.Failed) > 0
}

// Document returns the result for the given path.
func (r *FinalResult) Document(path string) (*DocumentResult, bool) {
	i := slices.IndexFunc(r.Documents, func(d *DocumentResult) bool { return d.Path == path })
	if i < 0 {
		return nil, false
	}
	return r.Documents[i], true
}

// StatusCounts returns the number of documents per status.
func (r *FinalResult) StatusCounts() map[DocumentStatus]int {
	counts := make(map[DocumentStatus]int, len(r.Documents))
	for _, d := range r.Documents {
		counts[d.Status]++
	}
	return counts
}

// StyledSpan assigns a styling category to a region of a document.
type StyledSpan struct {
	Span     Span   `json:"span"`
	Category string `json:"category"`
}

// Styling is the output of the style stage for one document.
type Styling struct {
	Path  string       `json:"path"`
	Spans []StyledSpan `json:"spans"`
}

// SortedPaths returns a sorted copy of paths with duplicates removed.
func SortedPaths(paths []string) []string {
	out := slices.Clone(paths)
	slices.SortFunc(out, strings.Compare)
	return slices.Compact(out)
}
