package ports

import (
	"context"

	"go.trai.ch/sift/internal/core/domain"
)

// Parser turns document text into a syntax tree.
//
//go:generate mockgen -source=parser.go -destination=mocks/mock_parser.go -package=mocks
type Parser interface {
	// Parse parses src with the named grammar.
	// Syntax errors are reported as a ParseResult without a tree. An error is
	// returned only when the grammar itself is unavailable.
	Parse(ctx context.Context, grammar, path string, src []byte) (*domain.ParseResult, error)
}
