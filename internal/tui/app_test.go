package tui

import (
	"testing"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/tax"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

func daysAgo(n int) time.Time {
	return model.CalendarDate(time.Now()).AddDate(0, 0, -n)
}

func newLoadedApp(t *testing.T, expenses []model.Expense) App {
	t.Helper()
	prev := theme.Active
	t.Cleanup(func() { theme.Active = prev })

	a := NewApp(Options{User: "asha@example.com", Days: 30})
	a.loaded = true
	a.width, a.height = 140, 40
	a.applySnapshot(snapshot{
		User:     model.User{ID: "u1", Email: "asha@example.com"},
		Settings: model.DefaultSettings("u1"),
		Expenses: expenses,
	})
	return a
}

func sampleExpenses() []model.Expense {
	return []model.Expense{
		{ID: "e1", UserID: "u1", Amount: decimal.NewFromInt(450), Category: model.CategoryFood, Description: "lunch", Date: daysAgo(1)},
		{ID: "e2", UserID: "u1", Amount: decimal.NewFromInt(1200), Category: model.CategoryTransport, Description: "cab to airport", Date: daysAgo(3)},
		{ID: "e3", UserID: "u1", Amount: decimal.NewFromInt(300), Category: model.CategoryFood, Description: "groceries", Date: daysAgo(10)},
		{ID: "e4", UserID: "u1", Amount: decimal.NewFromInt(9000), Category: model.CategoryShopping, Description: "phone", Date: daysAgo(45)},
	}
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestRecomputeUsesDayWindow(t *testing.T) {
	a := newLoadedApp(t, sampleExpenses())

	if got := len(a.filtered); got != 3 {
		t.Fatalf("filtered = %d expenses, want 3", got)
	}
	if !a.stats.TotalSpent.Equal(decimal.NewFromInt(1950)) {
		t.Errorf("TotalSpent = %s, want 1950", a.stats.TotalSpent)
	}
	if len(a.daily) != 30 {
		t.Errorf("daily has %d entries, want 30", len(a.daily))
	}
	if top, ok := a.topCategory(); !ok || top.Category != model.CategoryTransport {
		t.Errorf("top category = %+v, want %s", top, model.CategoryTransport)
	}
	if len(a.insights) == 0 {
		t.Error("expected insights for non-empty history")
	}
}

func TestRecomputeCategoryFilter(t *testing.T) {
	prev := theme.Active
	t.Cleanup(func() { theme.Active = prev })

	a := NewApp(Options{User: "asha@example.com", Days: 30, Category: model.CategoryFood})
	a.applySnapshot(snapshot{Settings: model.DefaultSettings("u1"), Expenses: sampleExpenses()})

	if got := len(a.filtered); got != 2 {
		t.Fatalf("filtered = %d, want 2 food expenses", got)
	}
	for _, e := range a.filtered {
		if e.Category != model.CategoryFood {
			t.Errorf("unexpected category %q", e.Category)
		}
	}
}

func TestRecomputeBudget(t *testing.T) {
	prev := theme.Active
	t.Cleanup(func() { theme.Active = prev })

	budget := 5000.0
	a := NewApp(Options{Days: 30, MonthlyBudget: &budget})
	a.applySnapshot(snapshot{Settings: model.DefaultSettings("u1"), Expenses: sampleExpenses()})

	if a.budget == nil {
		t.Fatal("budget stats not computed")
	}
	if !a.budget.Budget.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Budget = %s, want 5000", a.budget.Budget)
	}
}

func TestApplySnapshotResolvesTheme(t *testing.T) {
	prev := theme.Active
	t.Cleanup(func() { theme.Active = prev })

	a := NewApp(Options{Theme: theme.Auto})
	a.applySnapshot(snapshot{Settings: model.Settings{Theme: "light"}})
	if theme.Active.Name != theme.FlexokiLight.Name {
		t.Errorf("auto + light setting -> %s, want %s", theme.Active.Name, theme.FlexokiLight.Name)
	}

	a = NewApp(Options{Theme: "catppuccin-mocha"})
	a.applySnapshot(snapshot{Settings: model.Settings{Theme: "light"}})
	if theme.Active.Name != "catppuccin-mocha" {
		t.Errorf("explicit theme ignored, got %s", theme.Active.Name)
	}
}

func TestApplySnapshotErrorKeepsData(t *testing.T) {
	a := newLoadedApp(t, sampleExpenses())
	a.applySnapshot(snapshot{Err: errNoUser})

	if a.loadErr == nil {
		t.Fatal("loadErr not recorded")
	}
	if len(a.expenses) != 4 {
		t.Errorf("expenses dropped on failed refresh: %d", len(a.expenses))
	}
}

func TestTabKeys(t *testing.T) {
	a := newLoadedApp(t, sampleExpenses())

	tests := []struct {
		key  string
		want int
	}{
		{"e", tabExpenses},
		{"i", tabInsights},
		{"t", tabTax},
		{"o", tabOverview},
	}
	for _, tt := range tests {
		a = press(t, a, tt.key)
		if a.activeTab != tt.want {
			t.Errorf("after %q activeTab = %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}
}

func TestTaxTabTypingEstimates(t *testing.T) {
	a := newLoadedApp(t, sampleExpenses())
	a = press(t, a, "t", "9", "0", "0", "0", "0", "0")

	if a.taxState.result == nil {
		t.Fatalf("no estimate after typing income (err=%v)", a.taxState.err)
	}
	want, err := tax.Estimate(decimal.NewFromInt(900_000))
	if err != nil {
		t.Fatal(err)
	}
	if !a.taxState.result.Tax.Equal(want.Tax) {
		t.Errorf("Tax = %s, want %s", a.taxState.result.Tax, want.Tax)
	}

	// Letters still switch tabs while the field holds a value.
	a = press(t, a, "o")
	if a.activeTab != tabOverview {
		t.Errorf("activeTab = %d, want overview", a.activeTab)
	}
}

func TestTaxTabBackspaceClears(t *testing.T) {
	a := newLoadedApp(t, nil)
	a = press(t, a, "t", "5", "backspace")
	if a.taxState.result != nil || a.taxState.err != nil {
		t.Errorf("empty field should clear estimate, got result=%v err=%v", a.taxState.result, a.taxState.err)
	}
}

func TestExpenseSearch(t *testing.T) {
	a := newLoadedApp(t, sampleExpenses())
	a = press(t, a, "e", "/", "c", "a", "b", "enter")

	if a.expState.searching {
		t.Fatal("search still active after enter")
	}
	got := a.visibleExpenses()
	if len(got) != 1 || got[0].ID != "e2" {
		t.Fatalf("visible = %+v, want only e2", got)
	}

	a = press(t, a, "esc")
	if a.expState.query != "" || len(a.visibleExpenses()) != 3 {
		t.Errorf("esc should clear the query, got %q with %d rows", a.expState.query, len(a.visibleExpenses()))
	}
}

func TestExpenseCursorClamps(t *testing.T) {
	a := newLoadedApp(t, sampleExpenses())
	a = press(t, a, "e", "j", "j", "j", "j", "j")
	if a.expState.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (last row)", a.expState.cursor)
	}
	a = press(t, a, "g")
	if a.expState.cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", a.expState.cursor)
	}
}

func TestMatchesQuery(t *testing.T) {
	e := model.Expense{Category: model.CategoryFood, Description: "Team Lunch", Source: "/tmp/hdfc-2024.csv"}
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"food", true},
		{"lunch", true},
		{"hdfc", true},
		{"tmp", false},
		{"rent", false},
	}
	for _, tt := range tests {
		if got := matchesQuery(e, tt.query); got != tt.want {
			t.Errorf("matchesQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestIsIncomeKey(t *testing.T) {
	for _, k := range []string{"0", "9", ",", ".", "backspace"} {
		if !isIncomeKey(k) {
			t.Errorf("isIncomeKey(%q) = false", k)
		}
	}
	for _, k := range []string{"q", "t", "?", "enter", "10"} {
		if isIncomeKey(k) {
			t.Errorf("isIncomeKey(%q) = true", k)
		}
	}
}

func TestChartDateLabels(t *testing.T) {
	day := func(m time.Month, d int) model.DailyStats {
		return model.DailyStats{Date: time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)}
	}
	// Newest first, as AggregateDays returns them.
	days := []model.DailyStats{day(3, 2), day(3, 1), day(2, 29), day(2, 28)}

	got := chartDateLabels(days)
	want := []string{"Feb", "29", "Mar", "2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels = %v, want %v", got, want)
		}
	}
}

func TestViewRendersEachTab(t *testing.T) {
	a := newLoadedApp(t, sampleExpenses())
	for _, key := range []string{"o", "e", "i", "t"} {
		a = press(t, a, key)
		if v := a.View(); v == "" {
			t.Errorf("tab %q rendered empty view", key)
		}
	}
}
