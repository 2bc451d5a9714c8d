package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when two task definitions share a kind.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrTaskNotFound is returned when a key refers to a kind missing from the registry.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrCycleDetected is returned when a task requires itself, directly or transitively.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrEngineFault marks failures of the engine itself. They abort the build and are never cached.
	ErrEngineFault = zerr.New("engine fault")

	// ErrTaskFailed is returned when a task, or a task it depends on, failed.
	ErrTaskFailed = zerr.New("task failed")

	// ErrInputEncodeFailed is returned when a task input cannot be encoded into a key.
	ErrInputEncodeFailed = zerr.New("failed to encode task input")

	// ErrInputDecodeFailed is returned when a task key input cannot be decoded.
	ErrInputDecodeFailed = zerr.New("failed to decode task input")

	// ErrOutputEncodeFailed is returned when a task output cannot be encoded.
	ErrOutputEncodeFailed = zerr.New("failed to encode task output")

	// ErrOutputDecodeFailed is returned when a stored output cannot be decoded.
	ErrOutputDecodeFailed = zerr.New("failed to decode task output")

	// ErrUnknownStampKind is returned when no stamper is registered for a stamp kind.
	ErrUnknownStampKind = zerr.New("unknown stamp kind")

	// ErrStampFailed is returned when a resource cannot be stamped.
	ErrStampFailed = zerr.New("failed to stamp resource")

	// ErrStoreCreateFailed is returned when the store location cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create store")

	// ErrStoreReadFailed is returned when a store entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read store entry")

	// ErrStoreUnmarshalFailed is returned when a store entry is corrupt.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal store entry")

	// ErrStoreMarshalFailed is returned when a store entry cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal store entry")

	// ErrStoreWriteFailed is returned when a store entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write store entry")

	// ErrGeneratorBuildFailed is returned when the constraint generator cannot be built.
	ErrGeneratorBuildFailed = zerr.New("generator build failed")

	// ErrEntryPointMissing is returned when a generator lacks a required entry point.
	ErrEntryPointMissing = zerr.New("generator entry point missing")

	// ErrEngineFailed is returned when the rewriting engine raises an error.
	ErrEngineFailed = zerr.New("rewriting engine failed")

	// ErrUnsatisfiable is returned when the solver cannot satisfy a constraint set.
	ErrUnsatisfiable = zerr.New("constraints unsatisfiable")

	// ErrMalformedConstraint is returned when the solver receives a term it does not understand.
	ErrMalformedConstraint = zerr.New("malformed constraint")

	// ErrGlobalAnalysisFailed is returned when the project-wide analysis failed.
	ErrGlobalAnalysisFailed = zerr.New("global analysis failed")

	// ErrUnsupportedGrammar is returned when no parser exists for a grammar name.
	ErrUnsupportedGrammar = zerr.New("unsupported grammar")

	// ErrFileReadFailed is returned when a document cannot be read.
	ErrFileReadFailed = zerr.New("failed to read file")

	// ErrConfigReadFailed is returned when a configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a configuration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no project or workspace file is found.
	ErrConfigNotFound = zerr.New("could not find sift.yaml or sift.work.yaml")

	// ErrMissingProjectName is returned in workspace mode when a project file has no name.
	ErrMissingProjectName = zerr.New("missing project name")

	// ErrInvalidProjectName is returned when a project name is invalid.
	ErrInvalidProjectName = zerr.New("project name can only contain alphanumeric characters, hyphens and underscores")

	// ErrDuplicateProjectName is returned when multiple projects share a name.
	ErrDuplicateProjectName = zerr.New("duplicate project name")

	// ErrProjectNotFound is returned when a requested project is not part of the workspace.
	ErrProjectNotFound = zerr.New("project not found")

	// ErrMissingLanguage is returned when a project does not reference a language definition.
	ErrMissingLanguage = zerr.New("missing language definition")

	// ErrInvalidLanguage is returned when a language definition is incomplete.
	ErrInvalidLanguage = zerr.New("invalid language definition")

	// ErrInvalidStoreBackend is returned for an unknown store backend.
	ErrInvalidStoreBackend = zerr.New("invalid store backend, expected 'file' or 'sqlite'")

	// ErrInvalidStampMode is returned for an unknown document stamp mode.
	ErrInvalidStampMode = zerr.New("invalid stamp mode, expected 'content' or 'modified'")

	// ErrInvalidUIMode is returned for an unknown --ui value.
	ErrInvalidUIMode = zerr.New("invalid ui mode, expected 'auto', 'tui' or 'plain'")

	// ErrInvalidColorMode is returned for an unknown --color value.
	ErrInvalidColorMode = zerr.New("invalid color mode, expected 'auto', 'always' or 'never'")

	// ErrDocumentNotInProject is returned when a file belongs to no project of the workspace.
	ErrDocumentNotInProject = zerr.New("file does not belong to any project")

	// ErrAnalysisAborted is returned when a build aborts on an engine fault.
	ErrAnalysisAborted = zerr.New("analysis aborted")

	// ErrAnalysisDegraded is returned in strict mode when a document failed.
	ErrAnalysisDegraded = zerr.New("analysis finished with failed documents")
)
