// Package treesitter implements ports.Parser with tree-sitter grammars.
package treesitter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Parser = (*Parser)(nil)

// grammars maps grammar names to tree-sitter languages.
// Lazily initialized on first use.
var (
	grammars     map[string]*sitter.Language
	grammarsOnce sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		grammars = map[string]*sitter.Language{
			"go":         golang.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"python":     python.GetLanguage(),
			"rust":       rust.GetLanguage(),
		}
	})
}

// Grammars returns the names of the supported grammars in sorted order.
func Grammars() []string {
	initGrammars()
	return slices.Sorted(maps.Keys(grammars))
}

// Parser parses documents into terms.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses src with the named grammar. A tree containing error or missing
// nodes is reported as a failed ParseResult carrying one message per error node.
func (p *Parser) Parse(ctx context.Context, grammar, path string, src []byte) (*domain.ParseResult, error) {
	initGrammars()
	lang, ok := grammars[grammar]
	if !ok {
		return nil, zerr.With(domain.ErrUnsupportedGrammar, "grammar", grammar)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "tree-sitter parse failed"), "path", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return &domain.ParseResult{Path: path, Messages: syntaxErrors(root, src)}, nil
	}
	return &domain.ParseResult{Path: path, Tree: toTerm(root, src)}, nil
}

func toTerm(n *sitter.Node, src []byte) *domain.Term {
	t := &domain.Term{Constructor: n.Type(), Span: span(n)}
	count := int(n.ChildCount())
	if count == 0 {
		t.Value = n.Content(src)
		return t
	}
	t.Children = make([]*domain.Term, 0, count)
	for i := range count {
		t.Children = append(t.Children, toTerm(n.Child(i), src))
	}
	return t
}

// syntaxErrors reports the outermost error and missing nodes below n.
func syntaxErrors(n *sitter.Node, src []byte) []domain.Message {
	var msgs []domain.Message
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		switch {
		case n.IsMissing():
			msgs = append(msgs, domain.Message{
				Severity: domain.SeverityError,
				Text:     fmt.Sprintf("missing %s", n.Type()),
				Span:     span(n),
			})
			return
		case n.IsError():
			msgs = append(msgs, domain.Message{
				Severity: domain.SeverityError,
				Text:     fmt.Sprintf("syntax error near %q", snippet(n.Content(src))),
				Span:     span(n),
			})
			return
		case !n.HasError():
			return
		}
		for i := range int(n.ChildCount()) {
			visit(n.Child(i))
		}
	}
	visit(n)

	if len(msgs) == 0 {
		msgs = append(msgs, domain.Message{Severity: domain.SeverityError, Text: "syntax error", Span: span(n)})
	}
	return msgs
}

func span(n *sitter.Node) *domain.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return &domain.Span{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
		StartByte:   int(n.StartByte()),
		EndByte:     int(n.EndByte()),
	}
}

const maxSnippet = 24

func snippet(s string) string {
	r := []rune(s)
	if len(r) > maxSnippet {
		return string(r[:maxSnippet]) + "..."
	}
	return s
}
