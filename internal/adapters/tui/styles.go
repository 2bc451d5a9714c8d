package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/sift/internal/ui/style"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Iris).
			Foreground(style.White)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(style.White)

	statusStyle = lipgloss.NewStyle().
			Foreground(style.Slate)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Iris).
			Bold(true)

	listStyle = lipgloss.NewStyle().
			PaddingRight(1)

	detailStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Slate).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			Faint(true)
)
