// Package tui holds the terminal styling and the interactive confirmation
// prompt used by the hmacsvc CLI.
package tui

import "github.com/charmbracelet/lipgloss"

// Theme centralizes CLI styling.
type Theme struct {
	OK     lipgloss.Style
	Failed lipgloss.Style
	Warn   lipgloss.Style

	Title  lipgloss.Style
	Key    lipgloss.Style
	Dim    lipgloss.Style
	Prompt lipgloss.Style
}

func NewDefaultTheme() Theme {
	return Theme{
		OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		Failed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Key:    lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD")),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Prompt: lipgloss.NewStyle().MarginLeft(2),
	}
}
