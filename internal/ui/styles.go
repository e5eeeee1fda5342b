package ui

import "github.com/charmbracelet/lipgloss"

var (
	tabStyle         = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("244"))
	activeTabStyle   = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("#3b82f6"))
	dayHeaderStyle   = lipgloss.NewStyle().Bold(true)
	selectedDayStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	todayStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10b981"))
	faintStyle       = lipgloss.NewStyle().Faint(true)
	doneStyle        = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	columnStyle      = lipgloss.NewStyle().PaddingRight(1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	helpStyle        = lipgloss.NewStyle().Faint(true)
	barFullStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
)

// swatch renders a colored dot for a task color.
func swatch(color string) string {
	if color == "" {
		return "●"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}
