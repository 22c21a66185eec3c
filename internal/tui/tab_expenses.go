package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/tui/components"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// expensesState holds the expenses tab state.
type expensesState struct {
	cursor    int
	offset    int // scroll offset for the list
	searching bool
	query     string
	input     textinput.Model
}

func newSearchInput(query string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "category or description"
	ti.CharLimit = 64
	ti.Width = 40
	ti.SetValue(query)
	ti.Focus()
	return ti
}

// matchesQuery reports whether e matches a case-insensitive search over
// category, description and source file name.
func matchesQuery(e model.Expense, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(e.Category), q) ||
		strings.Contains(strings.ToLower(e.Description), q) ||
		(e.Source != "" && strings.Contains(strings.ToLower(filepath.Base(e.Source)), q))
}

// visibleExpenses is the window's expenses narrowed by the search query.
func (a App) visibleExpenses() []model.Expense {
	if a.expState.query == "" {
		return a.filtered
	}
	var out []model.Expense
	for _, e := range a.filtered {
		if matchesQuery(e, a.expState.query) {
			out = append(out, e)
		}
	}
	return out
}

func (s *expensesState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.offset > s.cursor {
		s.offset = s.cursor
	}
}

func (s *expensesState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (a App) halfPage() int {
	half := (a.height - scrollOverhead) / 2
	if half < minHalfPageScroll {
		half = minHalfPageScroll
	}
	return half
}

// expensesKey handles list navigation. It reports whether key was consumed.
func (a *App) expensesKey(key string) (bool, tea.Cmd) {
	n := len(a.visibleExpenses())
	es := &a.expState

	switch key {
	case "j", "down":
		es.move(1, n)
	case "k", "up":
		es.move(-1, n)
	case "g":
		es.cursor = 0
		es.offset = 0
	case "G":
		es.cursor = n - 1
		es.clamp(n)
	case "ctrl+d":
		es.move(a.halfPage(), n)
	case "ctrl+u":
		es.move(-a.halfPage(), n)
	case "/":
		es.searching = true
		es.input = newSearchInput(es.query)
		return true, textinput.Blink
	case "esc":
		if es.query == "" {
			return false, nil
		}
		es.query = ""
		es.cursor, es.offset = 0, 0
	default:
		return false, nil
	}
	return true, nil
}

func (a App) updateExpensesSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	es := &a.expState

	switch msg.String() {
	case "enter":
		es.searching = false
		es.query = strings.TrimSpace(es.input.Value())
		es.input.Blur()
		return a, nil
	case "esc":
		es.searching = false
		es.query = ""
		es.input.Blur()
		es.cursor, es.offset = 0, 0
		return a, nil
	}

	var cmd tea.Cmd
	es.input, cmd = es.input.Update(msg)
	es.query = strings.TrimSpace(es.input.Value())
	es.cursor, es.offset = 0, 0
	return a, cmd
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	es := a.expState
	expenses := a.visibleExpenses()

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var search string
	if es.searching {
		search = es.input.View() + "\n"
	}

	if len(expenses) == 0 {
		msg := "No expenses in this window"
		if es.query != "" {
			msg = fmt.Sprintf("No expenses match %q", es.query)
		}
		return components.ContentCard("Expenses", search+mutedStyle.Render(msg), cw)
	}

	leftW := cw * 3 / 5
	rightW := cw - leftW
	if a.isCompactLayout() {
		leftW, rightW = cw, 0
	}
	leftInner := components.CardInnerWidth(leftW)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)

	visible := h - 6 // card border (2) + header row (1) + search/footer
	if es.searching {
		visible--
	}
	if visible < 5 {
		visible = 5
	}

	offset := es.offset
	if es.cursor < offset {
		offset = es.cursor
	}
	if es.cursor >= offset+visible {
		offset = es.cursor - visible + 1
	}
	end := offset + visible
	if end > len(expenses) {
		end = len(expenses)
	}

	amountW := 12
	catW := 16
	descW := leftInner - 10 - 1 - catW - 1 - amountW - 1
	if descW < 0 {
		descW = 0
	}

	var left strings.Builder
	left.WriteString(search)
	left.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-*s %*s %s", "Date", catW, "Category", amountW, "Amount", "Description")))
	left.WriteString("\n")
	for i := offset; i < end; i++ {
		e := expenses[i]
		amount := cli.FormatMoney(e.Amount)
		line := fmt.Sprintf("%-10s %-*s %s %s",
			e.Date.Format(model.DateLayout),
			catW, truncStr(e.Category, catW),
			strings.Repeat(" ", max(0, amountW-lipgloss.Width(amount)))+amount,
			truncStr(e.Description, descW))
		line = truncStr(line, leftInner)

		if i == es.cursor {
			left.WriteString(selectedStyle.Render(fmt.Sprintf("%-*s", leftInner, line)))
		} else {
			left.WriteString(rowStyle.Render(line))
		}
		left.WriteString("\n")
	}
	left.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %s · [/] search  [j/k] navigate",
		es.cursor+1, cli.FormatNumber(int64(len(expenses))))))

	title := fmt.Sprintf("Expenses [%dd]", a.opts.Days)
	leftCard := components.ContentCard(title, left.String(), leftW)
	if rightW == 0 {
		return leftCard
	}

	sel := expenses[es.cursor]
	rightCard := components.ContentCard("Expense "+shortID(sel.ID), a.expenseDetail(sel, rightW), rightW)
	return components.CardRow([]string{leftCard, rightCard})
}

// expenseDetail renders the selected expense with its share of its category.
func (a App) expenseDetail(e model.Expense, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	field := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(amountStyle.Render(cli.FormatMoney(e.Amount)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")
	b.WriteString(field("Date", e.Date.Format("Mon, 02 Jan 2006")))
	b.WriteString(field("Category", e.Category))
	if e.Description != "" {
		b.WriteString(field("Description", truncStr(e.Description, innerW-12)))
	}
	if e.Source != "" {
		b.WriteString(field("Imported", truncStr(filepath.Base(e.Source), innerW-12)))
	} else {
		b.WriteString(field("Source", "manual"))
	}
	b.WriteString(field("ID", e.ID))

	for _, c := range a.categories {
		if c.Category != e.Category || c.Spent.IsZero() {
			continue
		}
		share := e.Amount.Div(c.Spent).InexactFloat64() * 100
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s of %s spend in %dd (%s)",
			cli.FormatPercent(share), c.Category, a.opts.Days, cli.FormatMoneyShort(c.Spent))))
		break
	}

	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
