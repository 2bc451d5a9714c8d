package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/sift/internal/core/domain"
)

const (
	documentListWidthRatio = 0.4
	paneBorderWidth        = 4
)

// DocumentRow is one analyzed document in the list.
type DocumentRow struct {
	Project  string
	Document *domain.DocumentResult
}

// Model represents the watch view state.
type Model struct {
	Root string

	Documents []*DocumentRow
	// Globals holds the failed global analyses of the last cycle, one line per project.
	Globals   []string

	Cycle     int
	Changed   int
	Analyzing bool
	// Running maps the span ID of every running task to its name.
	Running   map[string]string
	Current   string
	Completed int
	Err       error

	SelectedIdx int
	ListOffset  int
	ListHeight  int
	Width       int
	Height      int

	pending []*domain.FinalResult
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

// Selected returns the selected document, or nil when the list is empty.
func (m *Model) Selected() *DocumentRow {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Documents) {
		return m.Documents[m.SelectedIdx]
	}
	return nil
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "k", "up":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
			}
		case "j", "down":
			if m.SelectedIdx < len(m.Documents)-1 {
				m.SelectedIdx++
			}
		case "g", "home":
			m.SelectedIdx = 0
		case "G", "end":
			m.SelectedIdx = max(len(m.Documents)-1, 0)
		}
		m.ensureVisible()

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Title line, blank line and the key help line.
		m.ListHeight = msg.Height - lipgloss.Height(titleStyle.Render("SIFT")) - 2
		m.ensureVisible()

	case MsgCycleStart:
		m.Cycle++
		m.Changed = len(msg.Changed)
		m.Analyzing = true
		m.Completed = 0
		m.Current = ""
		m.Err = nil
		m.pending = nil
		clear(m.Running)

	case MsgTaskStart:
		m.Running[msg.SpanID] = msg.Name
		m.Current = msg.Name

	case MsgTaskComplete:
		if _, ok := m.Running[msg.SpanID]; ok {
			delete(m.Running, msg.SpanID)
			m.Completed++
		}

	case MsgReport:
		m.pending = append(m.pending, msg.Result)

	case MsgCycleDone:
		m.finishCycle()

	case MsgCycleError:
		m.Analyzing = false
		m.Err = msg.Err
		m.pending = nil
	}

	return m, nil
}

// finishCycle replaces the displayed documents, keeping the selection on the
// same document when it is still analyzed.
func (m *Model) finishCycle() {
	var project, path string
	if row := m.Selected(); row != nil {
		project, path = row.Project, row.Document.Path
	}

	m.Analyzing = false
	m.Current = ""
	m.Documents = m.Documents[:0]
	m.Globals = m.Globals[:0]
	for _, res := range m.pending {
		if res.GlobalStatus != "" && res.GlobalStatus != domain.StatusOK {
			m.Globals = append(m.Globals, res.Project+": global analysis "+string(res.GlobalStatus)+": "+res.GlobalError)
		}
		for _, doc := range res.Documents {
			m.Documents = append(m.Documents, &DocumentRow{Project: res.Project, Document: doc})
		}
	}
	m.pending = nil

	m.SelectedIdx = min(m.SelectedIdx, max(len(m.Documents)-1, 0))
	for i, row := range m.Documents {
		if row.Project == project && row.Document.Path == path {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
}

// Failed returns the number of displayed documents that did not analyze cleanly.
func (m *Model) Failed() int {
	n := 0
	for _, row := range m.Documents {
		if row.Document.Status != domain.StatusOK {
			n++
		}
	}
	return n
}
