package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/config"
	"go.trai.ch/sift/internal/core/domain"
)

func TestLoadLanguage_DefaultGeneratorDir(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "calc.lang.hcl", `
language "calc" {
  extensions   = [".calc"]
  grammar      = "javascript"
  entry_points = { cgen_global = "g.risor", cgen_document = "d.risor" }
}
`)

	lang, err := config.LoadLanguage(filepath.Join(dir, "calc.lang.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "calc", lang.Name)
	assert.Equal(t, "javascript", lang.Grammar)
	assert.Equal(t, dir, lang.GeneratorDir)
	assert.Empty(t, lang.Styles)
	assert.True(t, lang.HasExtension("main.CALC"))
}

func TestLoadLanguage_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "Syntax Error",
			content:     `language "x" {`,
			errContains: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:        "No Language Block",
			content:     ``,
			errContains: domain.ErrInvalidLanguage.Error(),
		},
		{
			name: "Two Language Blocks",
			content: `
language "a" {
  extensions   = [".a"]
  grammar      = "go"
  entry_points = {}
}
language "b" {
  extensions   = [".b"]
  grammar      = "go"
  entry_points = {}
}
`,
			errContains: domain.ErrInvalidLanguage.Error(),
		},
		{
			name: "Missing Grammar",
			content: `
language "a" {
  extensions   = [".a"]
  grammar      = ""
  entry_points = {}
}
`,
			errContains: domain.ErrInvalidLanguage.Error(),
		},
		{
			name: "Missing Required Attribute",
			content: `
language "a" {
  grammar = "go"
}
`,
			errContains: domain.ErrConfigParseFailed.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			createFile(t, dir, "x.lang.hcl", tt.content)

			lang, err := config.LoadLanguage(filepath.Join(dir, "x.lang.hcl"))
			require.ErrorContains(t, err, tt.errContains)
			assert.Nil(t, lang)
		})
	}
}
