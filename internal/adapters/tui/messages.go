package tui

import "go.trai.ch/sift/internal/core/domain"

// MsgCycleStart starts an analysis cycle. Changed lists the files that triggered it.
type MsgCycleStart struct {
	Changed []string
}

// MsgTaskStart is sent when a task execution or freshness check begins.
type MsgTaskStart struct {
	SpanID string
	Name   string
}

// MsgTaskComplete is sent when a task span ends.
type MsgTaskComplete struct {
	SpanID string
	Err    error
}

// MsgReport carries the final result of one project of the running cycle.
type MsgReport struct {
	Result *domain.FinalResult
}

// MsgCycleDone ends the running cycle. The reports received since MsgCycleStart
// replace the displayed documents.
type MsgCycleDone struct{}

// MsgCycleError ends the running cycle without a report.
type MsgCycleError struct {
	Err error
}
