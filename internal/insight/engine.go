// Package insight turns a user's expenses into an ordered list of
// rule-based observations about their spending.
//
// Analyze computes the facts; a Formatter renders them as sentences.
// Neither reads the clock: callers pass now explicitly.
package insight

import (
	"fmt"
	"time"

	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/shopspring/decimal"
)

// FactKind identifies one observation. Facts are emitted in kind order.
type FactKind int

const (
	TotalSpend FactKind = iota
	MonthlySpend
	TopCategory
	WeeklyAverage
	SavingsTip
)

func (k FactKind) String() string {
	switch k {
	case TotalSpend:
		return "total_spend"
	case MonthlySpend:
		return "monthly_spend"
	case TopCategory:
		return "top_category"
	case WeeklyAverage:
		return "weekly_average"
	case SavingsTip:
		return "savings_tip"
	}
	return fmt.Sprintf("fact(%d)", int(k))
}

// TipKind selects the savings tip sentence.
type TipKind int

const (
	TipNone TipKind = iota
	TipCutBack
	TipOnTrack
)

// Fact is one computed observation with the values needed to render it.
type Fact struct {
	Kind     FactKind
	Amount   decimal.Decimal
	Count    int
	Category string
	Percent  decimal.Decimal // category share of total spend, unrounded
	Dominant bool            // Percent above DominanceThreshold
	Tip      TipKind
}

var (
	// DominanceThreshold is the category share, in percent, above which the
	// top category is flagged.
	DominanceThreshold = decimal.NewFromInt(40)

	// SavingsTipThreshold is the monthly spend above which the cut-back tip
	// replaces the on-track message.
	SavingsTipThreshold = decimal.NewFromInt(15000)

	hundred = decimal.NewFromInt(100)
	week    = decimal.NewFromInt(7)
	dayNs   = decimal.NewFromInt(int64(24 * time.Hour))
)

// Generate renders the insights for records with DefaultFormatter.
func Generate(records []model.Expense, now time.Time) ([]string, error) {
	facts, err := Analyze(records, now)
	if err != nil {
		return nil, err
	}
	return DefaultFormatter.Render(facts), nil
}

// Analyze computes the ordered facts for records as of now. An empty input
// yields no facts. Any record with a negative amount or no date fails the
// whole call.
func Analyze(records []model.Expense, now time.Time) ([]Fact, error) {
	if len(records) == 0 {
		return nil, nil
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	var (
		total        = decimal.Zero
		monthly      = decimal.Zero
		monthlyCount int
		oldest       time.Time
	)

	// Categories in first-seen order so ties resolve deterministically.
	var order []string
	sums := make(map[string]decimal.Decimal)

	for _, r := range records {
		total = total.Add(r.Amount)

		if inMonth(r.Date, now) {
			monthly = monthly.Add(r.Amount)
			monthlyCount++
		}

		if _, seen := sums[r.Category]; !seen {
			order = append(order, r.Category)
			sums[r.Category] = decimal.Zero
		}
		sums[r.Category] = sums[r.Category].Add(r.Amount)

		if oldest.IsZero() || r.Date.Before(oldest) {
			oldest = r.Date
		}
	}

	facts := []Fact{{Kind: TotalSpend, Amount: total, Count: len(records)}}

	if monthlyCount > 0 {
		facts = append(facts, Fact{Kind: MonthlySpend, Amount: monthly, Count: monthlyCount})
	}

	if total.IsPositive() {
		top := order[0]
		for _, cat := range order[1:] {
			if sums[cat].GreaterThan(sums[top]) {
				top = cat
			}
		}
		topSum := sums[top]
		facts = append(facts, Fact{
			Kind:     TopCategory,
			Amount:   topSum,
			Category: top,
			Percent:  topSum.Mul(hundred).Div(total),
			// top/total*100 > 40, compared without division
			Dominant: topSum.Mul(hundred).GreaterThan(total.Mul(DominanceThreshold)),
		})
	}

	facts = append(facts, Fact{Kind: WeeklyAverage, Amount: weeklyAverage(total, oldest, now)})

	switch {
	case monthly.GreaterThan(SavingsTipThreshold):
		facts = append(facts, Fact{Kind: SavingsTip, Amount: monthly, Tip: TipCutBack})
	case monthly.IsPositive():
		facts = append(facts, Fact{Kind: SavingsTip, Amount: monthly, Tip: TipOnTrack})
	}

	return facts, nil
}

// inMonth reports whether the calendar date d falls in now's month.
func inMonth(d, now time.Time) bool {
	y, m, _ := d.Date()
	ny, nm, _ := now.Date()
	return y == ny && m == nm
}

// weeklyAverage spreads total over the days since the oldest record,
// counting at least one day.
func weeklyAverage(total decimal.Decimal, oldest, now time.Time) decimal.Decimal {
	y, m, d := oldest.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	days := decimal.NewFromInt(int64(now.Sub(start))).Div(dayNs)
	if days.LessThan(decimal.NewFromInt(1)) {
		days = decimal.NewFromInt(1)
	}
	return total.Mul(week).Div(days)
}
