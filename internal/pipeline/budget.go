package pipeline

import (
	"time"

	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeBudget tracks month-to-date spend against a monthly budget and
// projects the month-end total from the current daily burn rate.
func ComputeBudget(expenses []model.Expense, budget decimal.Decimal, now time.Time) model.BudgetStats {
	y, m, d := now.Date()
	daysInMonth := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()

	bs := model.BudgetStats{
		Budget:        budget,
		CurrentSpend:  decimal.Zero,
		DaysElapsed:   d,
		DaysRemaining: daysInMonth - d,
	}

	for _, e := range expenses {
		if sameMonth(e.Date, now) {
			bs.CurrentSpend = bs.CurrentSpend.Add(e.Amount)
		}
	}

	bs.DailyBurnRate = bs.CurrentSpend.Div(decimal.NewFromInt(int64(d)))
	bs.ProjectedMonthly = bs.DailyBurnRate.Mul(decimal.NewFromInt(int64(daysInMonth)))

	if budget.IsPositive() {
		bs.BudgetUsedPercent = bs.CurrentSpend.Div(budget).Mul(decimal.NewFromInt(100)).InexactFloat64()
		bs.OverBudget = bs.ProjectedMonthly.GreaterThan(budget)
	}

	return bs
}
