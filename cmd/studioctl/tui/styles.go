package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
const (
	colorAccent = "#2AB7CA"
	colorGood   = "#8BD450"
	colorBad    = "#E84855"
	colorDim    = "#8A8A8A"
	colorBright = "#F2F2F2"
	colorFrame  = "#3C6E71"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorAccent)).
		MarginTop(1).
		MarginBottom(1)

	stateStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorGood))

	errorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorBad))

	dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorDim))

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(colorFrame)).
		Padding(0, 2)

	badgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorBright)).
		Background(lipgloss.Color(colorFrame)).
		Padding(0, 1)
)
