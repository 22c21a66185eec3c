package insight

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/spendwise/internal/money"

	"github.com/shopspring/decimal"
)

// Onboarding is the single sentence returned when there are no expenses.
const Onboarding = "Start tracking your expenses to get personalized financial insights! " +
	"Add your first expense to see tailored recommendations."

// Formatter renders facts as sentences. Amounts are rounded here and
// nowhere else.
type Formatter struct {
	Currency string
}

// DefaultFormatter renders rupee amounts.
var DefaultFormatter = Formatter{Currency: "₹"}

// Render turns facts into sentences, preserving their order. No facts means
// no expenses, which renders as the onboarding prompt.
func (f Formatter) Render(facts []Fact) []string {
	if len(facts) == 0 {
		return []string{Onboarding}
	}

	out := make([]string, 0, len(facts))
	for _, fact := range facts {
		if s := f.sentence(fact); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f Formatter) sentence(fact Fact) string {
	switch fact.Kind {
	case TotalSpend:
		return fmt.Sprintf("You've tracked %s in total expenses across %s.",
			f.money(fact.Amount), transactions(fact.Count))
	case MonthlySpend:
		return fmt.Sprintf("This month, you've spent %s on %s.",
			f.money(fact.Amount), transactions(fact.Count))
	case TopCategory:
		if fact.Dominant {
			return fmt.Sprintf("⚠️ %s%% of your spending is on %q. Consider setting a budget for this category to save more.",
				fact.Percent.Round(0).String(), fact.Category)
		}
		return fmt.Sprintf("Your top spending category is %q at %s.", fact.Category, f.money(fact.Amount))
	case WeeklyAverage:
		return fmt.Sprintf("Your average weekly spending is approximately %s.", f.money(fact.Amount))
	case SavingsTip:
		switch fact.Tip {
		case TipCutBack:
			return "💡 Tip: Try to reduce discretionary spending by 10% to increase your savings!"
		case TipOnTrack:
			return "✅ You're doing great! Keep tracking your expenses to maintain financial awareness."
		}
	}
	return ""
}

func (f Formatter) money(d decimal.Decimal) string {
	return f.Currency + money.Format(d)
}

func transactions(n int) string {
	if n == 1 {
		return "1 transaction"
	}
	return fmt.Sprintf("%d transactions", n)
}

// Narrative joins sentences into a single paragraph.
func Narrative(sentences []string) string {
	return strings.Join(sentences, " ")
}
