package components

import (
	"strings"

	"github.com/dailybudget/dailybudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar with key hints on the left
// and a status message on the right. Warnings use the orange accent.
func RenderStatusBar(width int, hints, status string, warn bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " " + hints
	right := ""
	if status != "" {
		right = status + " "
		if warn {
			right = lipgloss.NewStyle().Foreground(t.Orange).Render(right)
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
