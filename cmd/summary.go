package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Spending summary for the selected window",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	user, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	if len(expenses) == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		fmt.Println("  Add one with `spendwise expense add` or `spendwise import <dir>`.")
		return nil
	}

	now := time.Now()
	filtered, since, _ := applyFilters(expenses)
	stats := pipeline.Aggregate(filtered, now)

	if stats.TotalExpenses == 0 {
		fmt.Println("\n  No expenses in the selected time range.")
		return nil
	}

	// Previous window of the same length, ending the day before since.
	prevUntil := since.AddDate(0, 0, -1)
	prevSince := since.AddDate(0, 0, -flagDays)
	prev := pipeline.FilterByTime(pipeline.FilterByCategory(expenses, flagCategory), prevSince, prevUntil)
	prevStats := pipeline.Aggregate(prev, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SPENDING  %s  Last %dd", user.Email, flagDays)))
	fmt.Println()

	rows := [][]string{
		{"Expenses", cli.FormatNumber(int64(stats.TotalExpenses))},
		{"Total Spent", cli.FormatMoney(stats.TotalSpent)},
		{"Categories", cli.FormatNumber(int64(stats.ActiveCategories))},
		{"Active Days", cli.FormatNumber(int64(stats.ActiveDays))},
		{"---"},
		{"This Month", fmt.Sprintf("%s (%d expenses)", cli.FormatMoney(stats.MonthSpent), stats.MonthExpenses)},
	}

	perDay := fmt.Sprintf("%s/day", cli.FormatMoney(stats.SpentPerDay))
	if prevStats.SpentPerDay.IsPositive() {
		perDay += fmt.Sprintf("  (%s vs prev %dd)",
			cli.FormatDelta(stats.SpentPerDay, prevStats.SpentPerDay), flagDays)
	}
	rows = append(rows, []string{"Spent/active day", perDay})

	if stats.Largest != nil {
		rows = append(rows, []string{"Largest", fmt.Sprintf("%s  %s on %s",
			cli.FormatMoney(stats.Largest.Amount),
			stats.Largest.Category,
			stats.Largest.Date.Format("02 Jan"))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	return nil
}
