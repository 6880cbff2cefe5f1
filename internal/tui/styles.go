package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.ANSIColor(8))

	// Bar colours by height, low to high.
	barLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(10))
	barMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(11))
	barHighStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(9))
)
