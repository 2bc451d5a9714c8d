package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/sift/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	listWidth := int(float64(m.Width) * documentListWidthRatio)
	detailWidth := max(m.Width-listWidth-paneBorderWidth, 0)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.header(),
		"",
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			listStyle.Width(listWidth).Render(m.documentList()),
			detailStyle.Width(detailWidth).Render(m.detail()),
		),
		helpStyle.Render("↑/↓ select • q quit"),
	)
}

func (m *Model) header() string {
	title := titleStyle.Render("SIFT " + m.Root)
	if m.Err != nil {
		title = failureTitleStyle.Render("SIFT " + m.Root)
	}

	var status string
	switch {
	case m.Analyzing:
		status = fmt.Sprintf("cycle %d • analyzing • %d done, %d running", m.Cycle, m.Completed, len(m.Running))
		if m.Current != "" {
			status += " • " + m.Current
		}
	case m.Err != nil:
		status = fmt.Sprintf("cycle %d • %v", m.Cycle, m.Err)
	default:
		status = fmt.Sprintf("cycle %d • %d document(s), %d failed", m.Cycle, len(m.Documents), m.Failed())
		if m.Changed > 0 {
			status += fmt.Sprintf(" • %d file(s) changed", m.Changed)
		}
	}
	return title + " " + statusStyle.Render(status)
}

func (m *Model) documentList() string {
	var s strings.Builder

	height := m.ListHeight - len(m.Globals)
	for _, g := range m.Globals {
		s.WriteString(lipgloss.NewStyle().Foreground(style.Red).Render(style.Cross+" "+g) + "\n")
	}

	start := m.ListOffset
	end := min(start+max(height, 0), len(m.Documents))
	start = min(start, end)

	for i := start; i < end; i++ {
		s.WriteString(m.renderRow(i, m.Documents[i]) + "\n")
	}
	if len(m.Documents) == 0 && !m.Analyzing {
		s.WriteString(statusStyle.Render("no documents") + "\n")
	}
	return s.String()
}

func (m *Model) renderRow(index int, row *DocumentRow) string {
	icon, color := style.Status(row.Document.Status)
	cursor := "  "
	name := row.Project + "/" + row.Document.Path
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		name = selectedStyle.Render(name)
	}
	return cursor + lipgloss.NewStyle().Foreground(color).Render(icon) + " " + name
}

func (m *Model) detail() string {
	row := m.Selected()
	if row == nil {
		return statusStyle.Render("Waiting for the first analysis...")
	}

	doc := row.Document
	icon, color := style.Status(doc.Status)
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Foreground(color).Render(icon+" "+string(doc.Status)) + " " + doc.Path + "\n\n")
	if len(doc.Messages) == 0 {
		s.WriteString(statusStyle.Render(fmt.Sprintf("no messages, %d binding(s)", len(doc.Bindings))) + "\n")
	}
	for _, msg := range doc.Messages {
		sev := lipgloss.NewStyle().Foreground(style.Severity(msg.Severity)).Render(string(msg.Severity))
		loc := ""
		if msg.Span != nil {
			loc = fmt.Sprintf(" %d:%d", msg.Span.StartLine, msg.Span.StartColumn)
		}
		s.WriteString(sev + loc + ": " + msg.Text + "\n")
	}
	return s.String()
}
