package config

// Workfile represents the structure of the sift.work.yaml configuration file.
type Workfile struct {
	Version  string   `yaml:"version"`
	Root     string   `yaml:"root"`
	Store    string   `yaml:"store"`
	Projects []string `yaml:"projects"`
}

// Projectfile represents the structure of the sift.yaml configuration file.
type Projectfile struct {
	Version  string   `yaml:"version"`
	Project  string   `yaml:"project"`
	Root     string   `yaml:"root"`
	Language string   `yaml:"language"`
	Exclude  []string `yaml:"exclude"`
	Store    string   `yaml:"store"`
	// Stamp is "content" (default) or "modified".
	Stamp string `yaml:"stamp"`
}

// languageFile is the top-level structure of a *.lang.hcl file.
type languageFile struct {
	Languages []*languageBlock `hcl:"language,block"`
}

// languageBlock is a language definition.
//
//	language "calc" {
//	  extensions    = [".calc"]
//	  grammar       = "python"
//	  generator_dir = "generator"
//	  entry_points  = { cgen_global = "global.risor", cgen_document = "document.risor" }
//	  styles        = { identifier = "variable" }
//	}
type languageBlock struct {
	Name         string            `hcl:"name,label"`
	Extensions   []string          `hcl:"extensions"`
	Grammar      string            `hcl:"grammar"`
	GeneratorDir string            `hcl:"generator_dir,optional"`
	EntryPoints  map[string]string `hcl:"entry_points"`
	Styles       map[string]string `hcl:"styles,optional"`
}
