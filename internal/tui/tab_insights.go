package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/insight"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/tui/components"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderInsightsTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	bulletStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	wrapStyle := lipgloss.NewStyle().Width(innerW - 2)

	var b strings.Builder

	// Row 1: insight sentences
	var body strings.Builder
	switch {
	case a.insightErr != nil:
		body.WriteString(errStyle.Render("Insights unavailable: " + a.insightErr.Error()))
	case len(a.insights) == 0:
		body.WriteString(mutedStyle.Width(innerW).Render(insight.Onboarding))
	default:
		for i, s := range a.insights {
			wrapped := strings.Split(wrapStyle.Render(s), "\n")
			for j, line := range wrapped {
				if j == 0 {
					body.WriteString(bulletStyle.Render("• "))
				} else {
					body.WriteString(textStyle.Render("  "))
				}
				body.WriteString(textStyle.Render(line))
				body.WriteString("\n")
			}
			if i < len(a.insights)-1 {
				body.WriteString("\n")
			}
		}
	}
	title := "Insights"
	if a.opts.Category != "" {
		title = fmt.Sprintf("Insights · %s", a.opts.Category)
	}
	b.WriteString(components.ContentCard(title, strings.TrimSuffix(body.String(), "\n"), cw))
	b.WriteString("\n")

	// Row 2: monthly history
	if len(a.months) > 0 {
		months := a.months
		if len(months) > 12 {
			months = months[:12]
		}
		vals := make([]float64, len(months))
		labels := make([]string, len(months))
		for i, m := range months {
			vals[len(months)-1-i] = m.Spent.InexactFloat64()
			labels[len(months)-1-i] = m.Month.Format("Jan")
		}

		halves := components.LayoutRow(cw, 2)
		chartW, tableW := halves[0], halves[1]
		if a.isCompactLayout() {
			chartW, tableW = cw, cw
		}

		chartCard := components.ContentCard(
			fmt.Sprintf("Monthly Spend (%d months)", len(months)),
			components.BarChart(vals, labels, t.Magenta, components.CardInnerWidth(chartW), 8),
			chartW,
		)
		tableCard := components.ContentCard("Month by Month", a.monthTable(months, components.CardInnerWidth(tableW)), tableW)

		if a.isCompactLayout() {
			b.WriteString(chartCard)
			b.WriteString("\n")
			b.WriteString(tableCard)
		} else {
			b.WriteString(components.CardRow([]string{chartCard, tableCard}))
		}
	}

	return b.String()
}

// monthTable lists months newest first with the change against the month
// before and the top category.
func (a App) monthTable(months []model.MonthlyStats, innerW int) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	upStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	downStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	catW := innerW - 8 - 1 - 10 - 1 - 10 - 1
	if catW < 6 {
		catW = 6
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %10s %10s %s", "Month", "Spent", "vs prev", "Top")))
	b.WriteString("\n")
	for i, m := range months {
		spent := cli.FormatMoneyShort(m.Spent)
		delta := dimStyle.Render(fmt.Sprintf("%10s", "-"))
		if i+1 < len(a.months) {
			prev := a.months[i+1].Spent
			d := fmt.Sprintf("%10s", cli.FormatDelta(m.Spent, prev))
			switch {
			case m.Spent.GreaterThan(prev):
				delta = upStyle.Render(d)
			case m.Spent.LessThan(prev):
				delta = downStyle.Render(d)
			default:
				delta = dimStyle.Render(d)
			}
		}
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-8s %s ", m.Month.Format("Jan 06"),
			strings.Repeat(" ", max(0, 10-lipgloss.Width(spent)))+spent)))
		b.WriteString(delta)
		b.WriteString(rowStyle.Render(" " + truncStr(m.TopCategory, catW)))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
