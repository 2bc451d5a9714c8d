package config

import (
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/zerr"
)

// LoadLanguage reads the language definition file at path.
// The file must define exactly one language block.
func LoadLanguage(path string) (*domain.Language, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(diags, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	var parsed languageFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(diags, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	if len(parsed.Languages) != 1 {
		err := zerr.With(domain.ErrInvalidLanguage, "path", path)
		return nil, zerr.With(err, "languages", len(parsed.Languages))
	}

	block := parsed.Languages[0]
	if err := validateLanguage(block); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	dir := filepath.Dir(path)
	return &domain.Language{
		Name:           block.Name,
		DefinitionPath: path,
		Extensions:     normalizeExtensions(block.Extensions),
		Grammar:        block.Grammar,
		GeneratorDir:   resolveDir(dir, block.GeneratorDir),
		EntryPoints:    block.EntryPoints,
		Styles:         block.Styles,
	}, nil
}

func validateLanguage(block *languageBlock) error {
	switch {
	case block.Name == "":
		return zerr.With(domain.ErrInvalidLanguage, "reason", "empty language name")
	case block.Grammar == "":
		return zerr.With(domain.ErrInvalidLanguage, "reason", "missing grammar")
	case len(block.Extensions) == 0:
		return zerr.With(domain.ErrInvalidLanguage, "reason", "missing extensions")
	}
	return nil
}

// normalizeExtensions lowercases extensions and adds the leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return domain.SortedPaths(out)
}
