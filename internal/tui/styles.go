package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle styles the workflow header line.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		// Terminal states
		"ok":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"skipped": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"failed":  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		// Active state
		"running": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Pending
		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given stage status.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
