package domain

import (
	"time"
)

// TaskKey identifies a memoizable computation: a task kind plus the canonical
// encoding of its input. Two equal keys denote the same logical computation.
type TaskKey struct {
	Kind  InternedString `json:"kind"`
	Input string         `json:"input"`
}

// NewTaskKey creates a TaskKey from a kind and an already canonical input encoding.
func NewTaskKey(kind, input string) TaskKey {
	return TaskKey{
		Kind:  NewInternedString(kind),
		Input: input,
	}
}

// String renders the key as kind(input). It is also the key used by stores.
func (k TaskKey) String() string {
	return k.Kind.String() + "(" + k.Input + ")"
}

// StampKind tags what a Stamp fingerprints. Stamps of different kinds never compare equal.
type StampKind string

const (
	// StampFileContent fingerprints the bytes of a file.
	StampFileContent StampKind = "file-content"
	// StampFileModified fingerprints the modification time of a file.
	StampFileModified StampKind = "file-modified"
	// StampDirListing fingerprints the set of files below a directory.
	StampDirListing StampKind = "dir-listing"
	// StampOutput fingerprints the output (or failure) of a task.
	StampOutput StampKind = "output"
)

// AbsentStampValue is the stamp value of a resource that does not exist.
const AbsentStampValue = "absent"

// Stamp is a comparable fingerprint of a resource or a derived value.
type Stamp struct {
	Kind  StampKind `json:"kind"`
	Value string    `json:"value"`
}

// Equal reports whether two stamps are of the same kind and value.
func (s Stamp) Equal(other Stamp) bool {
	return s.Kind == other.Kind && s.Value == other.Value
}

func (s Stamp) String() string {
	return string(s.Kind) + ":" + s.Value
}

// EdgeKind distinguishes dependencies on tasks from dependencies on raw resources.
type EdgeKind string

const (
	// EdgeTask is a dependency on the output of another task.
	EdgeTask EdgeKind = "task"
	// EdgeResource is a dependency on an external resource such as a file.
	EdgeResource EdgeKind = "resource"
)

// DependencyEdge records one dependency observed while a task executed,
// together with the stamp the dependency had at that time.
type DependencyEdge struct {
	Kind     EdgeKind `json:"kind"`
	Task     TaskKey  `json:"task,omitzero"`
	Resource string   `json:"resource,omitempty"`
	Stamp    Stamp    `json:"stamp"`
}

// Target returns a string identifying the dependency of the edge.
func (e DependencyEdge) Target() string {
	if e.Kind == EdgeTask {
		return "task:" + e.Task.String()
	}
	return "resource:" + string(e.Stamp.Kind) + ":" + e.Resource
}

// StoreEntry is the persisted result of the last execution of a task.
// Exactly one of Output and Failure is meaningful: a non-empty Failure marks a
// cached failed execution.
type StoreEntry struct {
	Key        TaskKey          `json:"key"`
	Output     []byte           `json:"output,omitempty"`
	Failure    string           `json:"failure,omitempty"`
	Edges      []DependencyEdge `json:"edges"`
	Generation uint64           `json:"generation"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Failed reports whether the entry records a failed execution.
func (e *StoreEntry) Failed() bool {
	return e.Failure != ""
}
