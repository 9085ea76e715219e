package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("245"))

	activeTabStyle = tabStyle.
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	collapsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))
)

// brightness maps an opacity in [0.4, 1] onto the 24-step grayscale ramp
// of the 256-color palette (232..255).
func brightness(opacity float64) lipgloss.Style {
	step := int((opacity - 0.4) / 0.6 * 23)
	step = max(0, min(23, step))
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("%d", 232+step)))
}
