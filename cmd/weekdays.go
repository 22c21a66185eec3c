package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/spf13/cobra"
)

var weekdaysCmd = &cobra.Command{
	Use:   "weekdays",
	Short: "Spend by day of week",
	RunE:  runWeekdays,
}

func init() {
	rootCmd.AddCommand(weekdaysCmd)
}

func runWeekdays(cmd *cobra.Command, _ []string) error {
	_, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		return nil
	}

	filtered, _, _ := applyFilters(expenses)
	days := pipeline.AggregateWeekdays(filtered)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SPEND BY WEEKDAY  Last %dd", flagDays)))
	fmt.Println()

	maxSpent := 0.0
	peak := 0
	for i, d := range days {
		if v := d.Spent.InexactFloat64(); v > maxSpent {
			maxSpent = v
			peak = i
		}
	}

	for _, d := range days {
		fmt.Println(cli.RenderHorizontalBar(
			cli.FormatDayOfWeek(int(d.Weekday)), 3,
			d.Spent.InexactFloat64(), maxSpent, 40,
			fmt.Sprintf("%s (%d)", cli.FormatMoneyShort(d.Spent), d.Expenses)))
	}

	if maxSpent > 0 {
		fmt.Printf("\n  Peak: %s (%s)\n\n",
			cli.FormatDayOfWeek(int(days[peak].Weekday)), cli.FormatMoney(days[peak].Spent))
	}
	return nil
}
