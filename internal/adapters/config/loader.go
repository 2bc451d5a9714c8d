// Package config provides the configuration loader for sift.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using YAML project files and HCL language definitions.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Mode represents the configuration mode of sift.
type Mode string

const (
	// ModeWorkspace indicates that sift has a workfile.
	ModeWorkspace Mode = "workspace"
	// ModeStandalone indicates that sift has only one project file.
	ModeStandalone Mode = "standalone"
)

var validProjectNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Load reads the configuration found from cwd and returns the workspace it describes.
func (l *Loader) Load(cwd string) (*domain.Workspace, error) {
	configPath, mode, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeStandalone:
		return l.loadProjectfile(configPath)
	case ModeWorkspace:
		return l.loadWorkfile(configPath)
	default:
		return nil, zerr.With(domain.ErrConfigNotFound, "mode", mode)
	}
}

// DiscoverRoot returns the directory holding the configuration file found from cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, _, err := l.findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

func (l *Loader) findConfiguration(cwd string) (string, Mode, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "cwd", cwd)
	}
	var standaloneCandidate string

	for {
		workfilePath := filepath.Join(currentDir, domain.WorkFileName)
		if _, err := os.Stat(workfilePath); err == nil {
			return workfilePath, ModeWorkspace, nil
		}

		if standaloneCandidate == "" {
			projectfilePath := filepath.Join(currentDir, domain.ProjectFileName)
			if _, err := os.Stat(projectfilePath); err == nil {
				standaloneCandidate = projectfilePath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	if standaloneCandidate != "" {
		return standaloneCandidate, ModeStandalone, nil
	}

	return "", "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) loadProjectfile(configPath string) (*domain.Workspace, error) {
	var projectfile Projectfile
	if err := readAndUnmarshalYAML(configPath, &projectfile); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(configPath)
	if projectfile.Project == "" {
		projectfile.Project = filepath.Base(configDir)
	}
	if err := validateProjectName(projectfile.Project, "."); err != nil {
		return nil, err
	}

	backend, err := parseBackend(projectfile.Store)
	if err != nil {
		return nil, err
	}

	project, err := l.buildProject(&projectfile, configPath, resolveRoot(configPath, projectfile.Root), map[string]*domain.Language{})
	if err != nil {
		return nil, err
	}

	return &domain.Workspace{
		Root:       configDir,
		ConfigPath: configPath,
		Store:      backend,
		Projects:   []*domain.Project{project},
	}, nil
}

func (l *Loader) loadWorkfile(configPath string) (*domain.Workspace, error) {
	var workfile Workfile
	if err := readAndUnmarshalYAML(configPath, &workfile); err != nil {
		return nil, err
	}

	backend, err := parseBackend(workfile.Store)
	if err != nil {
		return nil, err
	}

	workspaceRoot := resolveRoot(configPath, workfile.Root)
	projectPaths, err := l.resolveProjectPaths(workspaceRoot, workfile.Projects)
	if err != nil {
		return nil, err
	}

	ws := &domain.Workspace{
		Root:       filepath.Dir(configPath),
		ConfigPath: configPath,
		Store:      backend,
	}

	// Track project names to ensure uniqueness
	projectNames := make(map[string]string)
	languages := make(map[string]*domain.Language)

	for _, projectPath := range projectPaths {
		project, err := l.processProject(workspaceRoot, projectPath, projectNames, languages)
		if err != nil {
			return nil, err
		}
		if project != nil {
			ws.Projects = append(ws.Projects, project)
		}
	}

	return ws, nil
}

func (l *Loader) resolveProjectPaths(workspaceRoot string, patterns []string) ([]string, error) {
	// We use a map to deduplicate paths if multiple globs match the same directory
	projectPaths := make(map[string]struct{})

	for _, pattern := range patterns {
		absPattern := filepath.Join(workspaceRoot, pattern)

		matches, err := filepath.Glob(absPattern)
		if err != nil {
			return nil, zerr.Wrap(err, "glob pattern failed: "+pattern)
		}

		for _, match := range matches {
			projectPaths[match] = struct{}{}
		}
	}

	sortedPaths := make([]string, 0, len(projectPaths))
	for p := range projectPaths {
		sortedPaths = append(sortedPaths, p)
	}
	slices.Sort(sortedPaths)

	return sortedPaths, nil
}

func (l *Loader) processProject(
	workspaceRoot, projectPath string,
	projectNames map[string]string,
	languages map[string]*domain.Language,
) (*domain.Project, error) {
	relPath, _ := filepath.Rel(workspaceRoot, projectPath)

	// Glob returns files too
	info, pathErr := os.Stat(projectPath)
	if pathErr != nil {
		return nil, pathErr
	}
	if !info.IsDir() {
		return nil, nil
	}

	configPath := filepath.Join(projectPath, domain.ProjectFileName)
	if _, fileErr := os.Stat(configPath); os.IsNotExist(fileErr) {
		l.Logger.Warn(fmt.Sprintf("%s missing in project %s, skipping", domain.ProjectFileName, relPath))
		return nil, nil
	}

	var projectfile Projectfile
	if err := readAndUnmarshalYAML(configPath, &projectfile); err != nil {
		return nil, zerr.With(err, "directory", relPath)
	}

	if projectfile.Project == "" {
		return nil, zerr.With(domain.ErrMissingProjectName, "directory", relPath)
	}
	if err := validateProjectName(projectfile.Project, relPath); err != nil {
		return nil, err
	}

	if existingPath, exists := projectNames[projectfile.Project]; exists {
		err := zerr.With(domain.ErrDuplicateProjectName, "project_name", projectfile.Project)
		err = zerr.With(err, "first_occurrence", existingPath)
		err = zerr.With(err, "duplicate_at", relPath)
		return nil, err
	}
	projectNames[projectfile.Project] = relPath

	if projectfile.Root != "" {
		l.Logger.Warn(fmt.Sprintf("'root' defined in %s is ignored in workspace mode", relPath))
	}
	if projectfile.Store != "" {
		l.Logger.Warn(fmt.Sprintf("'store' defined in %s is ignored in workspace mode", relPath))
	}

	return l.buildProject(&projectfile, configPath, projectPath, languages)
}

// buildProject resolves the language of a project. Languages are shared between
// projects referencing the same definition file.
func (l *Loader) buildProject(
	projectfile *Projectfile,
	configPath, root string,
	languages map[string]*domain.Language,
) (*domain.Project, error) {
	if projectfile.Language == "" {
		return nil, zerr.With(domain.ErrMissingLanguage, "project", projectfile.Project)
	}
	stamp, err := parseStampMode(projectfile.Stamp)
	if err != nil {
		return nil, zerr.With(err, "project", projectfile.Project)
	}

	langPath := resolveDir(filepath.Dir(configPath), projectfile.Language)
	lang, ok := languages[langPath]
	if !ok {
		lang, err = LoadLanguage(langPath)
		if err != nil {
			return nil, zerr.With(err, "project", projectfile.Project)
		}
		languages[langPath] = lang
	}

	return &domain.Project{
		Name:          projectfile.Project,
		Root:          root,
		ConfigPath:    configPath,
		Language:      lang,
		Exclude:       projectfile.Exclude,
		DocumentStamp: stamp,
	}, nil
}

func validateProjectName(name, relPath string) error {
	if !validProjectNameRegex.MatchString(name) {
		err := zerr.With(domain.ErrInvalidProjectName, "project_name", name)
		return zerr.With(err, "directory", relPath)
	}
	return nil
}

func parseBackend(value string) (domain.StoreBackend, error) {
	switch backend := domain.StoreBackend(value); backend {
	case "":
		return domain.StoreBackendFile, nil
	case domain.StoreBackendFile, domain.StoreBackendSQLite:
		return backend, nil
	default:
		return "", zerr.With(domain.ErrInvalidStoreBackend, "store", value)
	}
}

func parseStampMode(value string) (domain.StampKind, error) {
	switch value {
	case "", "content":
		return domain.StampFileContent, nil
	case "modified":
		return domain.StampFileModified, nil
	default:
		return "", zerr.With(domain.ErrInvalidStampMode, "stamp", value)
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	return resolveDir(filepath.Dir(configPath), configuredRoot)
}

// resolveDir resolves configured against base. An empty value selects base.
func resolveDir(base, configured string) string {
	if configured == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(base, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
