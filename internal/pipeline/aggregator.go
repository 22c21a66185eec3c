// Package pipeline orchestrates statement import and expense aggregation.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/shopspring/decimal"
)

// Aggregate computes summary statistics across expenses. The "this month"
// figures use now's calendar month.
func Aggregate(expenses []model.Expense, now time.Time) model.SummaryStats {
	stats := model.SummaryStats{
		TotalSpent:  decimal.Zero,
		MonthSpent:  decimal.Zero,
		SpentPerDay: decimal.Zero,
	}
	activeDays := make(map[string]struct{})
	categories := make(map[string]struct{})

	for i := range expenses {
		e := &expenses[i]
		stats.TotalExpenses++
		stats.TotalSpent = stats.TotalSpent.Add(e.Amount)
		if sameMonth(e.Date, now) {
			stats.MonthExpenses++
			stats.MonthSpent = stats.MonthSpent.Add(e.Amount)
		}

		activeDays[dayKey(e.Date)] = struct{}{}
		if e.Amount.IsPositive() {
			categories[e.Category] = struct{}{}
		}

		if stats.Largest == nil || e.Amount.GreaterThan(stats.Largest.Amount) {
			largest := *e
			stats.Largest = &largest
		}
		if stats.FirstDate.IsZero() || e.Date.Before(stats.FirstDate) {
			stats.FirstDate = e.Date
		}
		if e.Date.After(stats.LastDate) {
			stats.LastDate = e.Date
		}
	}

	stats.ActiveDays = len(activeDays)
	stats.ActiveCategories = len(categories)

	// Per-active-day rate
	if stats.ActiveDays > 0 {
		stats.SpentPerDay = stats.TotalSpent.Div(decimal.NewFromInt(int64(stats.ActiveDays)))
	}

	return stats
}

// AggregateCategories computes per-category totals. Standard categories come
// first in their display order, then other labels in first-seen order.
// Categories with a zero total are dropped.
func AggregateCategories(expenses []model.Expense) []model.CategoryStats {
	catMap := make(map[string]*model.CategoryStats)
	var order []string
	total := decimal.Zero

	for _, e := range expenses {
		cs, ok := catMap[e.Category]
		if !ok {
			cs = &model.CategoryStats{Category: e.Category, Spent: decimal.Zero}
			catMap[e.Category] = cs
			order = append(order, e.Category)
		}
		cs.Expenses++
		cs.Spent = cs.Spent.Add(e.Amount)
		total = total.Add(e.Amount)
	}

	ordered := make([]string, 0, len(order))
	for _, c := range model.Categories {
		if _, ok := catMap[c]; ok {
			ordered = append(ordered, c)
		}
	}
	for _, c := range order {
		if !model.IsStandardCategory(c) {
			ordered = append(ordered, c)
		}
	}

	cats := make([]model.CategoryStats, 0, len(ordered))
	for _, c := range ordered {
		cs := catMap[c]
		if cs.Spent.IsZero() {
			continue
		}
		cs.SharePercent = cs.Spent.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		cats = append(cats, *cs)
	}
	return cats
}

// AggregateDays computes per-day totals between since and until (inclusive
// calendar days), filling gaps with zeros. Most recent day first.
func AggregateDays(expenses []model.Expense, since, until time.Time) []model.DailyStats {
	filtered := FilterByTime(expenses, since, until)

	dayMap := make(map[string]*model.DailyStats)

	for _, e := range filtered {
		key := dayKey(e.Date)
		ds, ok := dayMap[key]
		if !ok {
			ds = &model.DailyStats{Date: model.CalendarDate(e.Date), Spent: decimal.Zero}
			dayMap[key] = ds
		}
		ds.Expenses++
		ds.Spent = ds.Spent.Add(e.Amount)
	}

	// Fill in every day in the range so the chart shows gaps as zeros
	if !since.IsZero() && !until.IsZero() {
		day := model.CalendarDate(since)
		end := model.CalendarDate(until)
		for !day.After(end) {
			key := dayKey(day)
			if _, ok := dayMap[key]; !ok {
				dayMap[key] = &model.DailyStats{Date: day, Spent: decimal.Zero}
			}
			day = day.AddDate(0, 0, 1)
		}
	}

	// Convert to sorted slice (most recent first)
	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})

	return days
}

// AggregateMonths computes per-calendar-month totals, most recent first.
func AggregateMonths(expenses []model.Expense) []model.MonthlyStats {
	type monthAcc struct {
		stats  model.MonthlyStats
		byCat  map[string]decimal.Decimal
		catSeq []string
	}
	monthMap := make(map[string]*monthAcc)

	for _, e := range expenses {
		y, m, _ := e.Date.Date()
		month := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		key := month.Format("2006-01")
		acc, ok := monthMap[key]
		if !ok {
			acc = &monthAcc{
				stats: model.MonthlyStats{Month: month, Spent: decimal.Zero},
				byCat: make(map[string]decimal.Decimal),
			}
			monthMap[key] = acc
		}
		acc.stats.Expenses++
		acc.stats.Spent = acc.stats.Spent.Add(e.Amount)
		if _, seen := acc.byCat[e.Category]; !seen {
			acc.catSeq = append(acc.catSeq, e.Category)
			acc.byCat[e.Category] = decimal.Zero
		}
		acc.byCat[e.Category] = acc.byCat[e.Category].Add(e.Amount)
	}

	months := make([]model.MonthlyStats, 0, len(monthMap))
	for _, acc := range monthMap {
		top := decimal.Zero
		for _, c := range acc.catSeq {
			if v := acc.byCat[c]; v.GreaterThan(top) {
				top = v
				acc.stats.TopCategory = c
			}
		}
		months = append(months, acc.stats)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month.After(months[j].Month)
	})

	return months
}

// AggregateWeekdays computes spend by day of week, Sunday first.
func AggregateWeekdays(expenses []model.Expense) []model.WeekdayStats {
	days := make([]model.WeekdayStats, 7)
	for i := range days {
		days[i].Weekday = time.Weekday(i)
		days[i].Spent = decimal.Zero
	}

	for _, e := range expenses {
		wd := e.Date.Weekday()
		days[wd].Expenses++
		days[wd].Spent = days[wd].Spent.Add(e.Amount)
	}
	return days
}

// Recent returns the n most recent expenses in chronological order.
func Recent(expenses []model.Expense, n int) []model.Expense {
	if n <= 0 {
		return nil
	}
	sorted := make([]model.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// FilterByTime returns expenses dated within [since, until], compared by
// calendar day. A zero bound is open.
func FilterByTime(expenses []model.Expense, since, until time.Time) []model.Expense {
	if since.IsZero() && until.IsZero() {
		return expenses
	}

	var from, to time.Time
	if !since.IsZero() {
		from = model.CalendarDate(since)
	}
	if !until.IsZero() {
		to = model.CalendarDate(until)
	}

	var result []model.Expense
	for _, e := range expenses {
		d := model.CalendarDate(e.Date)
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// FilterByCategory returns expenses whose category contains the substring.
func FilterByCategory(expenses []model.Expense, category string) []model.Expense {
	if category == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if containsIgnoreCase(e.Category, category) {
			result = append(result, e)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func dayKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

func sameMonth(d, now time.Time) bool {
	y, m, _ := d.Date()
	ny, nm, _ := now.Date()
	return y == ny && m == nm
}
