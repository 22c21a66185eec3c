// Package tui provides the interactive Bubble Tea dashboard for spendwise.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/spendwise/internal/config"
	"github.com/theirongolddev/spendwise/internal/insight"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/pipeline"
	"github.com/theirongolddev/spendwise/internal/tui/components"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Tab indices, matching components.Tabs.
const (
	tabOverview = iota
	tabExpenses
	tabInsights
	tabTax
)

// Options configures the dashboard.
type Options struct {
	DBPath          string
	User            string // email or id
	Days            int
	Category        string
	ImportDir       string // imported before the first render when set
	Theme           string // configured theme name, or theme.Auto
	Currency        string
	MonthlyBudget   *float64
	AutoRefresh     bool
	RefreshInterval time.Duration
	NeedSetup       bool // no config file yet: run the setup form first
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	user      model.User
	settings  model.Settings
	expenses  []model.Expense
	importRes *pipeline.ImportResult
	loaded    bool
	loadErr   error
	loadTime  time.Duration

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for current filter
	filtered   []model.Expense // inside the day window, newest first
	stats      model.SummaryStats
	prevStats  model.SummaryStats // previous window for comparison
	daily      []model.DailyStats
	categories []model.CategoryStats
	weekdays   []model.WeekdayStats
	months     []model.MonthlyStats // whole history, newest first
	budget     *model.BudgetStats
	insights   []string
	insightErr error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	expState expensesState
	taxState taxState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5
	minRefresh        = 10 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Days <= 0 {
		opts.Days = 30
	}
	if opts.Currency == "" {
		opts.Currency = "₹"
	}
	refreshInterval := opts.RefreshInterval
	if refreshInterval < minRefresh {
		refreshInterval = 30 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:            opts,
		needSetup:       opts.NeedSetup,
		autoRefresh:     opts.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		taxState:        newTaxState(),
		loadSub:         make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.request(true), a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// applySnapshot installs freshly loaded data.
func (a *App) applySnapshot(s snapshot) {
	a.loadTime = s.LoadTime
	a.lastRefresh = time.Now()
	a.loadErr = s.Err
	if s.Err != nil {
		return
	}
	a.user = s.User
	a.settings = s.Settings
	a.expenses = s.Expenses
	if s.Import != nil {
		a.importRes = s.Import
	}
	theme.Active = theme.Resolve(a.opts.Theme, a.settings.Theme)
	a.recompute()
}

func (a *App) recompute() {
	now := time.Now()
	since := now.AddDate(0, 0, -(a.opts.Days - 1))

	byCategory := pipeline.FilterByCategory(a.expenses, a.opts.Category)
	a.filtered = pipeline.FilterByTime(byCategory, since, now)

	a.stats = pipeline.Aggregate(a.filtered, now)
	a.daily = pipeline.AggregateDays(a.filtered, since, now)
	a.categories = pipeline.AggregateCategories(a.filtered)
	a.weekdays = pipeline.AggregateWeekdays(a.filtered)
	a.months = pipeline.AggregateMonths(byCategory)

	prevUntil := since.AddDate(0, 0, -1)
	prevSince := since.AddDate(0, 0, -a.opts.Days)
	a.prevStats = pipeline.Aggregate(pipeline.FilterByTime(byCategory, prevSince, prevUntil), now)

	a.budget = nil
	if a.opts.MonthlyBudget != nil {
		bs := pipeline.ComputeBudget(byCategory, decimal.NewFromFloat(*a.opts.MonthlyBudget), now)
		a.budget = &bs
	}

	// Insights look at the whole history, like the API does.
	facts, err := insight.Analyze(byCategory, now)
	a.insightErr = err
	if err == nil {
		a.insights = insight.Formatter{Currency: a.opts.Currency}.Render(facts)
	} else {
		a.insights = nil
	}

	a.expState.clamp(len(a.visibleExpenses()))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabExpenses && !a.expState.searching {
				a.expState.move(-1, len(a.visibleExpenses()))
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == tabExpenses && !a.expState.searching {
				a.expState.move(1, len(a.visibleExpenses()))
			}
			return a, nil

		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.applySnapshot(msg.snapshot)

		// Activate first-run setup after data loads
		if a.needSetup {
			a.setupForm = newSetupForm(a.opts, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && !a.needSetup {
			if time.Since(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, refreshDataCmd(a.request(false)))
			}
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.applySnapshot(msg.snapshot)
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	// And to the income field, which blinks its cursor.
	if a.activeTab == tabTax {
		var cmd tea.Cmd
		a.taxState.input, cmd = a.taxState.input.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if a.activeTab == tabExpenses && a.expState.searching {
		return a.updateExpensesSearch(msg)
	}

	if a.activeTab == tabTax && isIncomeKey(key) {
		return a.updateTaxInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabExpenses {
		if handled, cmd := a.expensesKey(key); handled {
			return a, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit

	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.request(false))
		}
		return a, nil

	case "R":
		a.autoRefresh = !a.autoRefresh
		// Persist to config (best-effort, ignore errors)
		if cfg, err := config.LoadFile(config.ConfigPath()); err == nil {
			cfg.TUI.AutoRefresh = a.autoRefresh
			_ = config.Save(cfg)
		}
		return a, nil

	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}

	if a.activeTab == tabTax {
		return a, a.taxState.input.Focus()
	}
	a.taxState.input.Blur()
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		a.refreshing = true
		req := a.request(false)
		req.createUser = true
		return a, refreshDataCmd(req)
	}

	if a.setupForm.State == huh.StateAborted {
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.loadErr != nil && a.user.ID == "" {
		return a.viewError()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  spendwise needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ spendwise"))
	b.WriteString(subtitleStyle.Render(" · personal expenses"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := 40
		if barW > w-30 {
			barW = w - 30
		}
		if barW < 20 {
			barW = 20
		}
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Importing statements %d/%d\n\n", a.progress, a.progressMax)))
		b.WriteString(components.ProgressBar(pct, barW))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading expenses..."))
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewError() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Red).
		Background(t.Surface).
		Padding(1, 3)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(errStyle.Render("Could not load your expenses"))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render(a.loadErr.Error()))
	b.WriteString("\n\n")
	if errors.Is(a.loadErr, errNoUser) {
		b.WriteString(hintStyle.Render("Run `spendwise setup` or pass --user <email>."))
	} else {
		b.WriteString(hintStyle.Render("Press r to retry, q to quit."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o e i t", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move in the expense list"},
			{"g G", "First / last expense"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"/", "Search expenses"},
			{"Esc", "Clear search"},
			{"0-9 , .", "Type income on the Tax tab"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + filter pill
	filterPillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	filterAccentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	filterStr := filterPillStyle.Render(" ") + filterAccentStyle.Render(fmt.Sprintf("%dd", a.opts.Days))
	if a.opts.Category != "" {
		filterStr += filterPillStyle.Render(" │ ") + filterAccentStyle.Render(a.opts.Category)
	}
	if a.expState.query != "" {
		filterStr += filterPillStyle.Render(" │ /") + filterAccentStyle.Render(a.expState.query)
	}
	if a.loadErr != nil {
		filterStr += filterPillStyle.Render(" │ ") +
			lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("refresh failed: "+a.loadErr.Error())
	}
	filterStr += filterPillStyle.Render(" ")

	filterRowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)
	header := components.RenderTabBar(a.activeTab, w) + "\n" + filterRowStyle.Render(filterStr)

	// 2. Status bar
	dataAge := a.loadTime.Round(time.Millisecond).String()
	statusBar := components.RenderStatusBar(w, a.user.Email, dataAge, a.refreshing, a.autoRefresh)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case tabInsights:
		content = a.renderInsightsTab(cw)
	case tabTax:
		content = a.renderTaxTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines, filled with background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// chartDateLabels builds compact X-axis labels for a chronological date series.
// First label and month boundaries show the month abbreviation; everything
// else is the day number. days is newest-first; labels come back oldest-left.
func chartDateLabels(days []model.DailyStats) []string {
	n := len(days)
	labels := make([]string, n)
	prevMonth := time.Month(0)
	for i := 0; i < n; i++ {
		dt := days[n-1-i].Date
		switch {
		case i == 0, dt.Month() != prevMonth && i != n-1:
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
