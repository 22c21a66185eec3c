package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryStats holds the top-level aggregate across a user's expenses.
type SummaryStats struct {
	TotalExpenses    int
	TotalSpent       decimal.Decimal
	MonthExpenses    int
	MonthSpent       decimal.Decimal
	ActiveCategories int
	ActiveDays       int
	SpentPerDay      decimal.Decimal
	Largest          *Expense
	FirstDate        time.Time
	LastDate         time.Time
}

// DailyStats holds spend for a single calendar day.
type DailyStats struct {
	Date     time.Time
	Expenses int
	Spent    decimal.Decimal
}

// CategoryStats holds aggregated spend for a single category.
type CategoryStats struct {
	Category     string
	Expenses     int
	Spent        decimal.Decimal
	SharePercent float64
}

// MonthlyStats holds spend for one calendar month.
type MonthlyStats struct {
	Month       time.Time // first day of the month, UTC
	Expenses    int
	Spent       decimal.Decimal
	TopCategory string
}

// WeekdayStats holds spend for one day of the week.
type WeekdayStats struct {
	Weekday  time.Weekday
	Expenses int
	Spent    decimal.Decimal
}

// AdminStats is the cross-user overview shown to administrators.
type AdminStats struct {
	Users      int
	Expenses   int
	TotalSpent decimal.Decimal
}
