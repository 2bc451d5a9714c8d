package scheduler

import (
	"context"
	"errors"
	"strings"

	"go.trai.ch/sift/internal/core/domain"
)

// TaskFailure is returned by Require when a task, or a task it depends on, failed.
// Failures are cached with the task entry and returned again until an input changes.
type TaskFailure struct {
	Key     domain.TaskKey
	Message string
}

func (f *TaskFailure) Error() string {
	return f.Message
}

// Is reports whether target is domain.ErrTaskFailed.
func (f *TaskFailure) Is(target error) bool {
	return target == domain.ErrTaskFailed
}

// CycleError is returned when a task requires itself, directly or transitively.
type CycleError struct {
	Chain []domain.TaskKey
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, k := range e.Chain {
		parts[i] = k.String()
	}
	return domain.ErrCycleDetected.Error() + ": " + strings.Join(parts, " -> ")
}

// Is matches both domain.ErrCycleDetected and domain.ErrEngineFault.
func (e *CycleError) Is(target error) bool {
	return target == domain.ErrCycleDetected || target == domain.ErrEngineFault
}

// faultError marks an error that aborts the build.
type faultError struct {
	err error
}

func (e *faultError) Error() string {
	return e.err.Error()
}

func (e *faultError) Unwrap() error {
	return e.err
}

func (e *faultError) Is(target error) bool {
	return target == domain.ErrEngineFault
}

func fault(err error) error {
	if err == nil || IsFault(err) {
		return err
	}
	return &faultError{err: err}
}

// IsFault reports whether err aborts the build rather than being cached as a task failure.
// Store errors, corrupted entries, cycles and cancellation are faults.
func IsFault(err error) bool {
	return errors.Is(err, domain.ErrEngineFault) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
