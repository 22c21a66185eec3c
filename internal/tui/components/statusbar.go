package components

import (
	"fmt"

	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, the
// signed-in user and data freshness on the right.
func RenderStatusBar(width int, user, dataAge string, refreshing, autoRefresh bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := " [?]help  [r]efresh  [q]uit"

	right := ""
	if user != "" {
		right = accent.Render(user) + muted.Render("  ")
	}
	switch {
	case refreshing:
		right += accent.Render("refreshing…")
	case dataAge != "":
		right += muted.Render(fmt.Sprintf("loaded in %s", dataAge))
	}
	if autoRefresh {
		right += muted.Render("  auto")
	}
	right += muted.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return style.Render(muted.Render(left) + muted.Render(fmt.Sprintf("%*s", padding, "")) + right)
}
