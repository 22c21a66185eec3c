// Package money renders decimal amounts with Indian digit grouping.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format rounds d to two decimal places, drops trailing fractional zeros,
// and groups the integer part the Indian way: 1234567.5 -> "12,34,567.5".
func Format(d decimal.Decimal) string {
	return format(d.Round(2))
}

// FormatWhole rounds d to a whole number before grouping.
func FormatWhole(d decimal.Decimal) string {
	return format(d.Round(0))
}

func format(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	out := Group(intPart)
	if frac != "" {
		out += "." + frac
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// Group inserts Indian-style separators into a string of digits:
// the last three digits, then pairs.
func Group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var b strings.Builder
	lead := len(head) % 2
	if lead > 0 {
		b.WriteString(head[:lead])
	}
	for i := lead; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}
