// Package linear provides a synchronous, line-oriented renderer for terminals and CI.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/ui/output"
	"go.trai.ch/sift/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer with chronological progress lines on
// stderr and a per-document report on stdout.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	verbose bool

	mu     sync.Mutex
	tasks  map[string]*taskState // spanID -> task state
	report bytes.Buffer
}

type taskState struct {
	name      string
	startTime time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithVerbose prints a line for every executed task.
func WithVerbose(verbose bool) Option {
	return func(r *Renderer) {
		r.verbose = verbose
	}
}

// WithProfile overrides the color profile.
func WithProfile(profile termenv.Profile) Option {
	return func(r *Renderer) {
		r.output = output.NewWithProfile(r.stdout, profile)
	}
}

// NewRenderer creates a new Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer, opts ...Option) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	r := &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stdout, output.ColorProfileANSI()),
		tasks:  make(map[string]*taskState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnTaskStart records the task and, in verbose mode, prints a start line.
func (r *Renderer) OnTaskStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{
		name:      name,
		startTime: startTime,
	}

	if r.verbose {
		prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
		_, _ = fmt.Fprintf(r.stderr, "%s started\n", prefix)
	}
}

// OnTaskComplete prints the completion status in verbose mode.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	delete(r.tasks, spanID)

	if !r.verbose {
		return
	}

	duration := endTime.Sub(task.startTime)
	prefix := r.output.String(fmt.Sprintf("[%s]", task.name)).Faint().String()
	if err != nil {
		_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n", prefix, r.paint(style.Cross, style.Red), duration, err)
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s done in %v\n", prefix, r.paint(style.Check, style.Green), duration)
}

// OnReport buffers the report of one project until Flush.
func (r *Renderer) OnReport(result *domain.FinalResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := result.StatusCounts()
	_, _ = fmt.Fprintf(&r.report, "%s %s: %d document(s), %d ok, %d failed\n",
		r.paint(style.Dot, style.Iris), result.Project,
		len(result.Documents), counts[domain.StatusOK], len(result.Failed))

	if result.GlobalStatus != "" && result.GlobalStatus != domain.StatusOK {
		icon, color := style.Status(result.GlobalStatus)
		_, _ = fmt.Fprintf(&r.report, "  %s global analysis %s: %s\n",
			r.paint(icon, color), result.GlobalStatus, result.GlobalError)
	}

	for _, doc := range result.Documents {
		icon, color := style.Status(doc.Status)
		_, _ = fmt.Fprintf(&r.report, "  %s %s %s\n", r.paint(icon, color), doc.Path, r.paint(string(doc.Status), style.Slate))
		for _, msg := range doc.Messages {
			_, _ = fmt.Fprintf(&r.report, "      %s%s\n", r.paint(string(msg.Severity), style.Severity(msg.Severity)), location(msg.Span)+": "+msg.Text)
		}
	}
}

// Flush writes the buffered reports to stdout.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.report.Len() == 0 {
		return nil
	}
	_, err := r.report.WriteTo(r.stdout)
	return err
}

func (r *Renderer) paint(s string, color lipgloss.Color) string {
	return r.output.String(s).Foreground(r.output.Color(string(color))).String()
}

func location(span *domain.Span) string {
	if span == nil {
		return ""
	}
	return fmt.Sprintf(" %d:%d", span.StartLine, span.StartColumn)
}
