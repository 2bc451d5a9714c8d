package ports

import (
	"time"

	"go.trai.ch/sift/internal/core/domain"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation logic.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnTaskStart is called when a task execution or freshness check begins.
	// spanID: unique identifier for this span
	// parentID: spanID of the requiring task (empty if top-level)
	// name: human-readable task name
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskComplete is called when the span finishes.
	// err: nil if successful, error otherwise
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// OnReport is called with the final result of each analyzed project.
	OnReport(result *domain.FinalResult)

	// Flush writes any buffered output.
	Flush() error
}
