package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

const (
	// EntryGlobal is the generator entry point producing the global constraints.
	EntryGlobal = "cgen_global"
	// EntryDocument is the generator entry point producing the constraints of one document.
	EntryDocument = "cgen_document"
)

// StoreBackend selects the persistence of the incremental store.
type StoreBackend string

const (
	// StoreBackendFile keeps one JSON file per task key.
	StoreBackendFile StoreBackend = "file"
	// StoreBackendSQLite keeps all entries in a single SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"
)

// Language describes how documents of one language are parsed and analyzed.
type Language struct {
	Name string
	// DefinitionPath is the absolute path of the language definition file.
	DefinitionPath string
	Extensions     []string
	Grammar        string
	// GeneratorDir is the absolute directory holding the generator sources.
	GeneratorDir string
	// EntryPoints maps an entry-point name to a script file relative to GeneratorDir.
	EntryPoints map[string]string
	// Styles maps a syntax node type to a styling category.
	Styles map[string]string
}

// HasExtension reports whether the file name carries one of the language's extensions.
func (l *Language) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(l.Extensions, ext)
}

// Project is a set of documents analyzed together against one language.
type Project struct {
	Name string
	// Root is the absolute project directory; document paths are relative to it.
	Root          string
	ConfigPath    string
	Language      *Language
	Exclude       []string
	// DocumentStamp decides when a document counts as changed. Empty means file content.
	DocumentStamp StampKind
}

// DocumentStampKind returns the stamp kind recorded for the project's documents.
func (p *Project) DocumentStampKind() StampKind {
	if p.DocumentStamp == "" {
		return StampFileContent
	}
	return p.DocumentStamp
}

// Workspace groups the projects discovered from a working directory.
// All projects of a workspace share one store below Root.
type Workspace struct {
	Root       string
	ConfigPath string
	Store      StoreBackend
	Projects   []*Project
}

// Project returns the project with the given name.
func (w *Workspace) Project(name string) (*Project, bool) {
	i := slices.IndexFunc(w.Projects, func(p *Project) bool { return p.Name == name })
	if i < 0 {
		return nil, false
	}
	return w.Projects[i], true
}
