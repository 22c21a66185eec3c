// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/spendwise/internal/money"

	"github.com/shopspring/decimal"
)

// Currency prefixes every formatted amount. Set from config at startup.
var Currency = "₹"

var (
	thousand = decimal.NewFromInt(1_000)
	lakh     = decimal.NewFromInt(1_00_000)
	crore    = decimal.NewFromInt(1_00_00_000)
)

// FormatMoney formats an amount with Indian digit grouping, e.g. "₹12,34,567.5".
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + Currency + money.Format(d.Neg())
	}
	return Currency + money.Format(d)
}

// FormatMoneyWhole formats an amount rounded to whole units.
func FormatMoneyWhole(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + Currency + money.FormatWhole(d.Neg())
	}
	return Currency + money.FormatWhole(d)
}

// FormatMoneyShort formats an amount with Indian magnitude suffixes.
// e.g., 1234 -> "₹1.2K", 250000 -> "₹2.5L", 31000000 -> "₹3.1Cr"
func FormatMoneyShort(d decimal.Decimal) string {
	abs := d.Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	switch {
	case abs.GreaterThanOrEqual(crore):
		return sign + Currency + abs.Div(crore).StringFixed(1) + "Cr"
	case abs.GreaterThanOrEqual(lakh):
		return sign + Currency + abs.Div(lakh).StringFixed(1) + "L"
	case abs.GreaterThanOrEqual(thousand):
		return sign + Currency + abs.Div(thousand).StringFixed(1) + "K"
	default:
		return sign + Currency + abs.Round(0).String()
	}
}

// FormatNumber adds Indian-style separators to an integer.
// e.g., 1234567 -> "12,34,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return money.Group(strconv.FormatInt(n, 10))
}

// FormatPercent formats a 0-100 percentage.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDelta formats a spend delta with sign.
func FormatDelta(current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return "-" + FormatMoneyShort(delta.Neg())
	}
	return "+" + FormatMoneyShort(delta)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
