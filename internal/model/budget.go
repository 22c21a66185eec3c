package model

import "github.com/shopspring/decimal"

// BudgetStats holds monthly budget tracking and forecast data.
type BudgetStats struct {
	Budget            decimal.Decimal
	CurrentSpend      decimal.Decimal
	DailyBurnRate     decimal.Decimal
	ProjectedMonthly  decimal.Decimal
	DaysElapsed       int
	DaysRemaining     int
	BudgetUsedPercent float64
	OverBudget        bool
}
