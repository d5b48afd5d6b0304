// Package ui renders CLI output.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Accent marks post paths and headings.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D"))

	// Muted is for dates, counts and hints.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	Bold = lipgloss.NewStyle().Bold(true)

	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D")).Bold(true)
)
