package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily spending table",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	_, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		return nil
	}

	filtered, since, until := applyFilters(expenses)
	days := pipeline.AggregateDays(filtered, since, until)

	if len(days) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY SPENDING  Last %dd", flagDays)))
	fmt.Println()

	spark := make([]float64, len(days))
	rows := make([][]string, 0, len(days))
	for i, d := range days {
		spark[len(days)-1-i] = d.Spent.InexactFloat64()
		rows = append(rows, []string{
			d.Date.Format(model.DateLayout),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.Expenses)),
			cli.FormatMoney(d.Spent),
		})
	}

	fmt.Printf("  %s\n\n", cli.RenderSparkline(spark))
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Expenses", "Spent"},
		Rows:    rows,
	}))

	return nil
}
