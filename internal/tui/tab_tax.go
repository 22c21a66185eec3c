package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/tax"
	"github.com/theirongolddev/spendwise/internal/tui/components"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// taxState holds the tax tab's income field and its last estimate.
type taxState struct {
	input  textinput.Model
	result *tax.Result
	err    error
}

func newTaxState() taxState {
	ti := textinput.New()
	ti.Prompt = "₹ "
	ti.Placeholder = "annual income, e.g. 12,00,000"
	ti.CharLimit = 20
	ti.Width = 24
	return taxState{input: ti}
}

// isIncomeKey reports whether key edits the income field rather than
// acting as a shortcut.
func isIncomeKey(key string) bool {
	switch key {
	case "backspace", "delete", ",", ".":
		return true
	}
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

// estimate recomputes the result from the field. An empty field clears it.
func (s *taxState) estimate() {
	s.result, s.err = nil, nil
	if strings.TrimSpace(s.input.Value()) == "" {
		return
	}
	income, err := tax.ParseIncome(s.input.Value())
	if err != nil {
		s.err = err
		return
	}
	res, err := tax.Estimate(income)
	if err != nil {
		s.err = err
		return
	}
	s.result = &res
}

func (a App) updateTaxInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if !a.taxState.input.Focused() {
		cmd = a.taxState.input.Focus()
	}
	var inputCmd tea.Cmd
	a.taxState.input, inputCmd = a.taxState.input.Update(msg)
	a.taxState.estimate()
	return a, tea.Batch(cmd, inputCmd)
}

func (a App) renderTaxTab(cw int) string {
	t := theme.Active
	ts := a.taxState

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	halves := components.LayoutRow(cw, 2)
	leftW, rightW := halves[0], halves[1]
	if a.isCompactLayout() {
		leftW, rightW = cw, cw
	}

	// Left: income field + estimate
	var est strings.Builder
	est.WriteString(ts.input.View())
	est.WriteString("\n\n")

	row := func(label, value string, style lipgloss.Style) {
		est.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)))
		est.WriteString(style.Render(value))
		est.WriteString("\n")
	}

	switch {
	case ts.err != nil:
		est.WriteString(errStyle.Render(ts.err.Error()))
	case ts.result == nil:
		est.WriteString(dimStyle.Render("Type an annual income to estimate tax."))
	default:
		r := ts.result
		row("Tax", cli.FormatMoney(r.RawTax), valueStyle)
		row("Cess (4%)", cli.FormatMoney(r.Cess), valueStyle)
		row("Total Tax", cli.FormatMoney(r.Tax), accentStyle)
		row("Take-home", cli.FormatMoney(r.TakeHome), greenStyle)
		if !r.Income.IsZero() {
			rate := r.Tax.Div(r.Income).InexactFloat64() * 100
			row("Effective rate", cli.FormatPercent(rate), valueStyle)
		}
		est.WriteString("\n")
		row("Slab", r.SlabLabel, valueStyle)
		row("Suggested form", r.SuggestedForm, valueStyle)
	}
	leftCard := components.ContentCard("Tax Estimate", est.String(), leftW)

	// Right: slab table with the matching slab highlighted
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	hitStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	rightInner := components.CardInnerWidth(rightW)

	var slabs strings.Builder
	slabs.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %5s %10s  %s", "Income", "Rate", "Base", "Form")))
	slabs.WriteString("\n")
	for _, b := range tax.Schedule() {
		base := cli.FormatMoneyWhole(b.BaseTax)
		line := fmt.Sprintf("%-20s %5s %s  %s",
			b.Label,
			b.Rate.Shift(2).String()+"%",
			strings.Repeat(" ", max(0, 10-lipgloss.Width(base)))+base,
			b.Form)
		line = truncStr(line, rightInner)
		if ts.result != nil && ts.result.Bracket.Label == b.Label {
			slabs.WriteString(hitStyle.Render(fmt.Sprintf("%-*s", rightInner, line)))
		} else {
			slabs.WriteString(valueStyle.Render(line))
		}
		slabs.WriteString("\n")
	}
	slabs.WriteString("\n")
	slabs.WriteString(dimStyle.Render("A 4% cess applies on top of the slab tax."))
	rightCard := components.ContentCard("Slabs", slabs.String(), rightW)

	if a.isCompactLayout() {
		return leftCard + "\n" + rightCard
	}
	return components.CardRow([]string{leftCard, rightCard})
}
