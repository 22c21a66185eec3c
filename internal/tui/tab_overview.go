package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/tui/components"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	stats := a.stats
	prev := a.prevStats
	var b strings.Builder

	// Row 1: Metric cards
	spentDelta := cli.FormatMoneyShort(stats.SpentPerDay) + "/day"
	if prev.TotalExpenses > 0 {
		spentDelta = fmt.Sprintf("%s (%s)", spentDelta, cli.FormatDelta(stats.TotalSpent, prev.TotalSpent))
	}

	countDelta := fmt.Sprintf("%d active days", stats.ActiveDays)
	if prev.TotalExpenses > 0 {
		countDelta = fmt.Sprintf("%+d vs prev", stats.TotalExpenses-prev.TotalExpenses)
	}

	largest, largestDelta := "-", ""
	if stats.Largest != nil {
		largest = cli.FormatMoneyShort(stats.Largest.Amount)
		largestDelta = stats.Largest.Category
	}

	top, topDelta := "-", ""
	if c, ok := a.topCategory(); ok {
		top = c.Category
		topDelta = cli.FormatPercent(c.SharePercent) + " of spend"
	}

	cards := []components.Metric{
		{Label: "Spent", Value: cli.FormatMoneyShort(stats.TotalSpent), Delta: spentDelta},
		{Label: "Expenses", Value: cli.FormatNumber(int64(stats.TotalExpenses)), Delta: countDelta},
		{Label: "Largest", Value: largest, Delta: largestDelta},
		{Label: "Top Category", Value: truncStr(top, 16), Delta: topDelta},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: Budget
	if a.budget != nil {
		bs := a.budget
		innerW := components.CardInnerWidth(cw)
		labelW := 12
		note := fmt.Sprintf("%s of %s", cli.FormatMoneyShort(bs.CurrentSpend), cli.FormatMoneyShort(bs.Budget))
		barW := innerW - labelW - lipgloss.Width(note) - 8
		if barW < 10 {
			barW = 10
		}

		dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		var body strings.Builder
		body.WriteString(components.BudgetBar("This month", bs.BudgetUsedPercent/100, labelW, barW, note))
		body.WriteString("\n")
		forecast := fmt.Sprintf("Burn %s/day · projected %s · %d days left",
			cli.FormatMoneyShort(bs.DailyBurnRate), cli.FormatMoneyShort(bs.ProjectedMonthly), bs.DaysRemaining)
		if bs.OverBudget {
			forecast += " · over budget"
		}
		body.WriteString(dimStyle.Render(forecast))

		b.WriteString(components.ContentCard("Monthly Budget", body.String(), cw))
		b.WriteString("\n")
	}

	// Row 3: Daily spend chart
	if len(a.daily) > 0 {
		days := a.daily
		chartVals := make([]float64, len(days))
		for i, d := range days {
			chartVals[len(days)-1-i] = d.Spent.InexactFloat64()
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 8
		}
		chart := components.Chart{
			Values: chartVals,
			Labels: chartDateLabels(days),
			Color:  t.Blue,
			Width:  components.CardInnerWidth(cw),
			Height: chartH,
		}
		title := fmt.Sprintf("Daily Spend (%dd)", a.opts.Days)
		if a.budget != nil {
			now := time.Now()
			monthDays := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
			chart.Target = a.budget.Budget.InexactFloat64() / float64(monthDays)
			title += " ╌ daily budget " + cli.FormatMoneyShort(decimal.NewFromFloat(chart.Target))
		}
		b.WriteString(components.ContentCard(title, chart.Render(), cw))
		b.WriteString("\n")
	}

	// Row 4: Category split + weekday pattern
	halves := components.LayoutRow(cw, 2)
	catWidth, dayWidth := halves[0], halves[1]
	if a.isCompactLayout() {
		catWidth, dayWidth = cw, cw
	}
	catCard := components.ContentCard("Categories", a.categoryBars(components.CardInnerWidth(catWidth)), catWidth)
	dayCard := components.ContentCard("By Weekday", a.weekdayBars(components.CardInnerWidth(dayWidth)), dayWidth)

	if a.isCompactLayout() {
		b.WriteString(catCard)
		b.WriteString("\n")
		b.WriteString(dayCard)
	} else {
		b.WriteString(components.CardRow([]string{catCard, dayCard}))
	}

	return b.String()
}

// topCategory returns the highest-spend category; ties keep display order.
func (a App) topCategory() (model.CategoryStats, bool) {
	if len(a.categories) == 0 {
		return model.CategoryStats{}, false
	}
	top := a.categories[0]
	for _, c := range a.categories[1:] {
		if c.Spent.GreaterThan(top.Spent) {
			top = c
		}
	}
	return top, true
}

func (a App) categoryBars(innerW int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	cats := a.categories
	if len(cats) == 0 {
		return pctStyle.Render("No expenses in this window")
	}
	if len(cats) > 6 {
		cats = cats[:6]
	}

	maxShare := 0.0
	for _, c := range cats {
		if c.SharePercent > maxShare {
			maxShare = c.SharePercent
		}
	}
	nameW := innerW / 3
	if nameW < 12 {
		nameW = 12
	}
	barMaxLen := innerW - nameW - 8
	if barMaxLen < 1 {
		barMaxLen = 1
	}

	var body strings.Builder
	for _, c := range cats {
		barLen := 0
		if maxShare > 0 {
			barLen = int(c.SharePercent / maxShare * float64(barMaxLen))
		}
		fmt.Fprintf(&body, "%s %s %s\n",
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(c.Category, nameW))),
			barStyle.Render(strings.Repeat("█", barLen)),
			pctStyle.Render(fmt.Sprintf("%.0f%%", c.SharePercent)))
	}
	return strings.TrimSuffix(body.String(), "\n")
}

func (a App) weekdayBars(innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	maxSpent := 0.0
	peak := -1
	for i, wd := range a.weekdays {
		if v := wd.Spent.InexactFloat64(); v > maxSpent {
			maxSpent = v
			peak = i
		}
	}

	// Compute amount column width from actual data so bars never overflow.
	amtW := 4
	for _, wd := range a.weekdays {
		if w := lipgloss.Width(cli.FormatMoneyShort(wd.Spent)); w > amtW {
			amtW = w
		}
	}
	barMax := innerW - 5 - amtW
	if barMax < 1 {
		barMax = 1
	}

	var body strings.Builder
	for i, wd := range a.weekdays {
		bl := 0
		if maxSpent > 0 {
			bl = int(wd.Spent.InexactFloat64() / maxSpent * float64(barMax))
		}
		color := t.Green
		if i == peak {
			color = t.Orange
		}
		amount := cli.FormatMoneyShort(wd.Spent)
		fmt.Fprintf(&body, "%s %s %s\n",
			labelStyle.Render(cli.FormatDayOfWeek(int(wd.Weekday))),
			labelStyle.Render(strings.Repeat(" ", amtW-lipgloss.Width(amount))+amount),
			lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", bl)))
	}
	return strings.TrimSuffix(body.String(), "\n")
}
