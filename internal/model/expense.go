// Package model defines domain types for spendwise expenses, users, and metrics.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput marks malformed amounts, incomes, or records.
var ErrInvalidInput = errors.New("invalid input")

// DateLayout is the storage and wire format for expense dates.
const DateLayout = "2006-01-02"

// Standard expense categories, in display order.
const (
	CategoryFood          = "Food & Dining"
	CategoryTransport     = "Transportation"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryBills         = "Bills & Utilities"
	CategoryHealthcare    = "Healthcare"
	CategoryEducation     = "Education"
	CategoryOthers        = "Others"
)

// Categories lists the standard categories offered by forms and charts.
// Expenses may carry any other label as well.
var Categories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealthcare,
	CategoryEducation,
	CategoryOthers,
}

// Expense is a single recorded spend. Amount is a non-negative magnitude in
// the base currency unit; Date carries calendar-day semantics only.
type Expense struct {
	ID          string
	UserID      string
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
	Source      string // statement file path; empty for manual entries
	CreatedAt   time.Time
}

// Validate reports whether the expense can be aggregated.
func (e Expense) Validate() error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: expense %q has no date", ErrInvalidInput, e.ID)
	}
	return nil
}

// ValidateAmount rejects negative amounts.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidInput, d.String())
	}
	return nil
}

// AmountFromFloat converts a float amount, rejecting NaN, infinities, and
// negative values.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: non-finite amount", ErrInvalidInput)
	}
	d := decimal.NewFromFloat(f)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseAmount parses a user-entered amount such as "1,250.50" or "₹999".
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "₹")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidInput)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q: %v", ErrInvalidInput, s, err)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseDate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidInput, s)
	}
	return t, nil
}

// CalendarDate truncates t to its calendar day, keeping the day as seen in
// t's own location, and returns it as midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsStandardCategory reports whether name is one of Categories.
func IsStandardCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
