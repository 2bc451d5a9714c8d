package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the Bubble Tea watch model as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		done:    make(chan struct{}),
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, r.err = r.program.Run()
		close(r.done)
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	r.send(tea.Quit())
	return nil
}

// Done is closed when the TUI has terminated, including when the user quit it.
func (r *Renderer) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the TUI has terminated. A program ended by its context is
// not an error.
func (r *Renderer) Wait() error {
	<-r.done
	if errors.Is(r.err, tea.ErrProgramKilled) || errors.Is(r.err, context.Canceled) {
		return nil
	}
	return r.err
}

// OnCycleStart forwards the start of an analysis cycle to the TUI.
func (r *Renderer) OnCycleStart(changed []string) {
	r.send(MsgCycleStart{Changed: changed})
}

// OnCycleError forwards a cycle that ended without a report.
func (r *Renderer) OnCycleError(err error) {
	r.send(MsgCycleError{Err: err})
}

// OnTaskStart forwards task start events to the TUI.
func (r *Renderer) OnTaskStart(spanID, _ /* parentID */, name string, _ time.Time) {
	r.send(MsgTaskStart{SpanID: spanID, Name: name})
}

// OnTaskComplete forwards task completion events to the TUI.
func (r *Renderer) OnTaskComplete(spanID string, _ time.Time, err error) {
	r.send(MsgTaskComplete{SpanID: spanID, Err: err})
}

// OnReport forwards the result of one project to the TUI.
func (r *Renderer) OnReport(result *domain.FinalResult) {
	r.send(MsgReport{Result: result})
}

// Flush ends the running cycle.
func (r *Renderer) Flush() error {
	r.send(MsgCycleDone{})
	return nil
}

// send drops messages once the TUI has terminated.
func (r *Renderer) send(msg tea.Msg) {
	select {
	case <-r.done:
	default:
		r.program.Send(msg)
	}
}

// Program returns the underlying tea.Program for testing.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
