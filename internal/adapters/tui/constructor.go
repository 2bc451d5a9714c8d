// Package tui provides the interactive terminal view of sift watch.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// NewModel creates a model watching root, rendering with the given color profile.
func NewModel(root string, profile termenv.Profile) Model {
	lipgloss.SetColorProfile(profile)

	return Model{
		Root:      root,
		Documents: make([]*DocumentRow, 0),
		Running:   make(map[string]string),
	}
}
