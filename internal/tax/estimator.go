// Package tax estimates income tax under a fixed progressive slab schedule.
package tax

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/shopspring/decimal"
)

// Bracket is one slab of the schedule. BaseTax is the tax owed on all income
// up to Lower; Rate applies to the part of income above Lower.
type Bracket struct {
	Lower     decimal.Decimal
	Upper     decimal.Decimal // inclusive; ignored when Unbounded
	Unbounded bool
	BaseTax   decimal.Decimal
	Rate      decimal.Decimal
	Label     string
	Form      string
}

// Contains reports whether income lies within [Lower, Upper]. Brackets are
// scanned in ascending order, so a boundary income lands in the lower one.
func (b Bracket) Contains(income decimal.Decimal) bool {
	if income.LessThan(b.Lower) {
		return false
	}
	return b.Unbounded || income.LessThanOrEqual(b.Upper)
}

// Result is a computed tax estimate.
type Result struct {
	Income        decimal.Decimal
	RawTax        decimal.Decimal // before cess
	Cess          decimal.Decimal
	Tax           decimal.Decimal // RawTax plus cess
	TakeHome      decimal.Decimal
	Bracket       Bracket
	SlabLabel     string
	SuggestedForm string
}

// CessRate is the flat surcharge applied to the computed tax.
var CessRate = decimal.RequireFromString("0.04")

var cessMultiplier = decimal.NewFromInt(1).Add(CessRate)

func inr(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// schedule is the slab table. Base taxes are fixed constants rather than
// derived from the rates.
var schedule = []Bracket{
	{Lower: inr(0), Upper: inr(300_000), BaseTax: inr(0), Rate: pct("0"), Label: "0–300,000", Form: "Form A"},
	{Lower: inr(300_000), Upper: inr(700_000), BaseTax: inr(0), Rate: pct("0.05"), Label: "300,001–700,000", Form: "Form A"},
	{Lower: inr(700_000), Upper: inr(1_000_000), BaseTax: inr(20_000), Rate: pct("0.10"), Label: "700,001–1,000,000", Form: "Form A or B"},
	{Lower: inr(1_000_000), Upper: inr(1_200_000), BaseTax: inr(50_000), Rate: pct("0.15"), Label: "1,000,001–1,200,000", Form: "Form B"},
	{Lower: inr(1_200_000), Upper: inr(1_500_000), BaseTax: inr(80_000), Rate: pct("0.20"), Label: "1,200,001–1,500,000", Form: "Form B"},
	{Lower: inr(1_500_000), Unbounded: true, BaseTax: inr(140_000), Rate: pct("0.30"), Label: "Above 1,500,000", Form: "Form B or C"},
}

// Schedule returns a copy of the slab table in ascending order.
func Schedule() []Bracket {
	out := make([]Bracket, len(schedule))
	copy(out, schedule)
	return out
}

// Estimate computes the tax owed on an annual income.
func Estimate(income decimal.Decimal) (Result, error) {
	if income.IsNegative() {
		return Result{}, fmt.Errorf("%w: negative income %s", model.ErrInvalidInput, income.String())
	}

	b, ok := lookup(income)
	if !ok {
		// Unreachable with a contiguous schedule ending in an unbounded slab.
		return Result{}, fmt.Errorf("no bracket for income %s", income.String())
	}

	raw := b.BaseTax.Add(income.Sub(b.Lower).Mul(b.Rate))
	total := raw.Mul(cessMultiplier)

	return Result{
		Income:        income,
		RawTax:        raw,
		Cess:          total.Sub(raw),
		Tax:           total,
		TakeHome:      income.Sub(total),
		Bracket:       b,
		SlabLabel:     b.Label,
		SuggestedForm: b.Form,
	}, nil
}

// EstimateFloat is Estimate for float input, rejecting NaN and infinities.
func EstimateFloat(income float64) (Result, error) {
	if math.IsNaN(income) || math.IsInf(income, 0) {
		return Result{}, fmt.Errorf("%w: non-finite income", model.ErrInvalidInput)
	}
	return Estimate(decimal.NewFromFloat(income))
}

// ParseIncome parses a user-entered income such as "12,00,000" or "₹500000".
func ParseIncome(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "₹")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "_", "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty income", model.ErrInvalidInput)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: income %q", model.ErrInvalidInput, s)
	}
	return d, nil
}

func lookup(income decimal.Decimal) (Bracket, bool) {
	for _, b := range schedule {
		if b.Contains(income) {
			return b, true
		}
	}
	return Bracket{}, false
}
