// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/sift/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	White  = lipgloss.Color("#FFFFFF")
	Ink    = lipgloss.Color("#0B0F19")
	Mist   = lipgloss.Color("#F6F7FB")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Cyan   = lipgloss.Color("#06B6D4")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// Status returns the icon and color of a document status.
func Status(status domain.DocumentStatus) (string, lipgloss.Color) {
	switch status {
	case domain.StatusOK:
		return Check, Green
	case domain.StatusUnavailable:
		return Circle, Yellow
	default:
		return Cross, Red
	}
}

// Severity returns the color of a diagnostic severity.
func Severity(severity domain.Severity) lipgloss.Color {
	switch severity {
	case domain.SeverityError:
		return Red
	case domain.SeverityWarning:
		return Yellow
	default:
		return Slate
	}
}

// categoryColors maps styling categories to colors. Unknown categories are
// rendered in Mist.
var categoryColors = map[string]lipgloss.Color{
	"keyword":  Iris,
	"variable": Cyan,
	"function": Green,
	"type":     Yellow,
	"string":   Green,
	"number":   Yellow,
	"comment":  Slate,
	"operator": Red,
}

// Category returns the color of a styling category.
func Category(category string) lipgloss.Color {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return Mist
}
