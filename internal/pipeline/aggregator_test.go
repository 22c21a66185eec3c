package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func exp(amount, category string, date time.Time) model.Expense {
	return model.Expense{
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     date,
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestAggregate(t *testing.T) {
	now := time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC)
	expenses := []model.Expense{
		exp("100.50", model.CategoryFood, day(2025, 3, 1)),
		exp("250", model.CategoryShopping, day(2025, 3, 1)),
		exp("49.50", model.CategoryFood, day(2025, 2, 28)),
		exp("0", "Gifts", day(2025, 1, 15)),
	}

	stats := Aggregate(expenses, now)
	if stats.TotalExpenses != 4 || stats.MonthExpenses != 2 {
		t.Fatalf("counts = %d / %d, want 4 / 2", stats.TotalExpenses, stats.MonthExpenses)
	}
	assertDecimal(t, "TotalSpent", stats.TotalSpent, "400")
	assertDecimal(t, "MonthSpent", stats.MonthSpent, "350.50")
	if stats.ActiveDays != 3 {
		t.Errorf("ActiveDays = %d, want 3", stats.ActiveDays)
	}
	if stats.ActiveCategories != 2 {
		t.Errorf("ActiveCategories = %d, want 2 (zero spend excluded)", stats.ActiveCategories)
	}
	assertDecimal(t, "SpentPerDay", stats.SpentPerDay, "133.3333333333333333")
	if stats.Largest == nil || stats.Largest.Category != model.CategoryShopping {
		t.Errorf("Largest = %+v, want the Shopping expense", stats.Largest)
	}
	if !stats.FirstDate.Equal(day(2025, 1, 15)) || !stats.LastDate.Equal(day(2025, 3, 1)) {
		t.Errorf("range = %v..%v", stats.FirstDate, stats.LastDate)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, time.Now())
	if stats.TotalExpenses != 0 || !stats.TotalSpent.IsZero() || stats.Largest != nil {
		t.Fatalf("stats = %+v, want zero value", stats)
	}
}

func TestAggregateCategoriesOrder(t *testing.T) {
	expenses := []model.Expense{
		exp("10", "Pets", day(2025, 1, 1)),
		exp("30", model.CategoryOthers, day(2025, 1, 2)),
		exp("20", "Gifts", day(2025, 1, 3)),
		exp("40", model.CategoryFood, day(2025, 1, 4)),
		exp("0", model.CategoryTransport, day(2025, 1, 5)),
	}

	cats := AggregateCategories(expenses)
	want := []string{model.CategoryFood, model.CategoryOthers, "Pets", "Gifts"}
	if len(cats) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(cats), len(want), cats)
	}
	for i, c := range want {
		if cats[i].Category != c {
			t.Errorf("cats[%d] = %q, want %q", i, cats[i].Category, c)
		}
	}
	if cats[0].SharePercent != 40 {
		t.Errorf("Food share = %v, want 40", cats[0].SharePercent)
	}
}

func TestAggregateDaysFillsGaps(t *testing.T) {
	expenses := []model.Expense{
		exp("10", model.CategoryFood, day(2025, 3, 1)),
		exp("5", model.CategoryFood, day(2025, 3, 1)),
		exp("7", model.CategoryFood, day(2025, 3, 4)),
		exp("99", model.CategoryFood, day(2025, 2, 1)), // outside range
	}

	days := AggregateDays(expenses, day(2025, 3, 1), time.Date(2025, 3, 4, 22, 0, 0, 0, time.UTC))
	if len(days) != 4 {
		t.Fatalf("got %d days, want 4", len(days))
	}
	if !days[0].Date.Equal(day(2025, 3, 4)) {
		t.Errorf("first day = %v, want newest (Mar 4)", days[0].Date)
	}
	assertDecimal(t, "Mar 4", days[0].Spent, "7")
	assertDecimal(t, "Mar 2", days[2].Spent, "0")
	assertDecimal(t, "Mar 1", days[3].Spent, "15")
	if days[3].Expenses != 2 {
		t.Errorf("Mar 1 expenses = %d, want 2", days[3].Expenses)
	}
}

func TestAggregateMonths(t *testing.T) {
	expenses := []model.Expense{
		exp("100", model.CategoryBills, day(2025, 1, 3)),
		exp("60", model.CategoryFood, day(2025, 2, 3)),
		exp("60", model.CategoryShopping, day(2025, 2, 9)),
		exp("20", model.CategoryFood, day(2024, 12, 31)),
	}

	months := AggregateMonths(expenses)
	if len(months) != 3 {
		t.Fatalf("got %d months, want 3", len(months))
	}
	if !months[0].Month.Equal(day(2025, 2, 1)) {
		t.Errorf("first month = %v, want Feb 2025", months[0].Month)
	}
	assertDecimal(t, "Feb", months[0].Spent, "120")
	if months[0].TopCategory != model.CategoryFood {
		t.Errorf("Feb top = %q, want first-seen tie winner %q", months[0].TopCategory, model.CategoryFood)
	}
	if months[2].TopCategory != model.CategoryFood || months[2].Month.Year() != 2024 {
		t.Errorf("Dec = %+v", months[2])
	}
}

func TestAggregateWeekdays(t *testing.T) {
	// 2025-03-03 is a Monday.
	expenses := []model.Expense{
		exp("10", model.CategoryFood, day(2025, 3, 3)),
		exp("15", model.CategoryFood, day(2025, 3, 10)),
		exp("4", model.CategoryFood, day(2025, 3, 9)),
	}

	days := AggregateWeekdays(expenses)
	if len(days) != 7 {
		t.Fatalf("got %d weekdays, want 7", len(days))
	}
	assertDecimal(t, "Monday", days[time.Monday].Spent, "25")
	assertDecimal(t, "Sunday", days[time.Sunday].Spent, "4")
	if days[time.Monday].Expenses != 2 {
		t.Errorf("Monday expenses = %d, want 2", days[time.Monday].Expenses)
	}
}

func TestRecent(t *testing.T) {
	expenses := []model.Expense{
		exp("3", model.CategoryFood, day(2025, 3, 3)),
		exp("1", model.CategoryFood, day(2025, 3, 1)),
		exp("4", model.CategoryFood, day(2025, 3, 4)),
		exp("2", model.CategoryFood, day(2025, 3, 2)),
	}

	got := Recent(expenses, 3)
	want := []string{"2", "3", "4"}
	if len(got) != len(want) {
		t.Fatalf("got %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		assertDecimal(t, "recent", got[i].Amount, w)
	}
	if !expenses[0].Amount.Equal(decimal.NewFromInt(3)) {
		t.Error("Recent reordered its input")
	}
	if Recent(expenses, 0) != nil {
		t.Error("Recent(0) should be nil")
	}
	if len(Recent(expenses, 10)) != 4 {
		t.Error("Recent(10) should return all")
	}
}

func TestFilters(t *testing.T) {
	expenses := []model.Expense{
		exp("1", model.CategoryFood, day(2025, 3, 1)),
		exp("2", model.CategoryBills, day(2025, 3, 5)),
		exp("3", model.CategoryFood, day(2025, 3, 9)),
	}

	inRange := FilterByTime(expenses, time.Date(2025, 3, 5, 23, 0, 0, 0, time.UTC), day(2025, 3, 9))
	if len(inRange) != 2 {
		t.Errorf("FilterByTime = %d, want 2 (inclusive calendar days)", len(inRange))
	}
	if len(FilterByTime(expenses, time.Time{}, day(2025, 3, 4))) != 1 {
		t.Error("open lower bound not honoured")
	}

	if got := FilterByCategory(expenses, "food"); len(got) != 2 {
		t.Errorf("FilterByCategory(food) = %d, want 2", len(got))
	}
	if got := FilterByCategory(expenses, ""); len(got) != 3 {
		t.Errorf("FilterByCategory(\"\") = %d, want 3", len(got))
	}
}

func TestComputeBudget(t *testing.T) {
	now := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC) // April has 30 days
	expenses := []model.Expense{
		exp("3000", model.CategoryFood, day(2025, 4, 2)),
		exp("2000", model.CategoryBills, day(2025, 4, 9)),
		exp("9999", model.CategoryBills, day(2025, 3, 30)),
	}

	bs := ComputeBudget(expenses, decimal.NewFromInt(12000), now)
	assertDecimal(t, "CurrentSpend", bs.CurrentSpend, "5000")
	assertDecimal(t, "DailyBurnRate", bs.DailyBurnRate, "500")
	assertDecimal(t, "ProjectedMonthly", bs.ProjectedMonthly, "15000")
	if bs.DaysElapsed != 10 || bs.DaysRemaining != 20 {
		t.Errorf("days = %d elapsed / %d remaining, want 10 / 20", bs.DaysElapsed, bs.DaysRemaining)
	}
	if bs.BudgetUsedPercent < 41.66 || bs.BudgetUsedPercent > 41.67 {
		t.Errorf("BudgetUsedPercent = %v, want ~41.67", bs.BudgetUsedPercent)
	}
	if !bs.OverBudget {
		t.Error("projected 15000 > 12000 should be over budget")
	}

	zero := ComputeBudget(expenses, decimal.Zero, now)
	if zero.OverBudget || zero.BudgetUsedPercent != 0 {
		t.Errorf("zero budget = %+v, want no percent or overrun", zero)
	}
}
