// Package tui renders the interactive batch view of `arffkit select --tui`.
package tui

import "github.com/charmbracelet/lipgloss"

// Shared styles.
//
//nolint:gochecknoglobals // Immutable lipgloss styles shared by views.
var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	LabelStyle   = lipgloss.NewStyle().Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	SubtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	BoxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Layout constants.
const (
	defaultWidth      = 100
	defaultHeight     = 24
	borderPadding     = 2
	maxNameDisplayLen = 32
	truncateSuffix    = "..."
	progressBarWidth  = 40
	// chromeHeight is the number of lines around the table.
	chromeHeight = 8
	minTableRows = 3
)

// Key bindings.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
	keySlash = "/"
)

// truncateName shortens a file name to fit its column.
func truncateName(name string) string {
	if len(name) <= maxNameDisplayLen {
		return name
	}
	return name[:maxNameDisplayLen-len(truncateSuffix)] + truncateSuffix
}
