package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagMonths int

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Spend per calendar month",
	Long:  "Spend per calendar month across all expenses (the --days window is not applied).",
	RunE:  runMonthly,
}

func init() {
	monthlyCmd.Flags().IntVar(&flagMonths, "limit", 12, "Number of months to show")
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(cmd *cobra.Command, _ []string) error {
	_, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	months := pipeline.AggregateMonths(pipeline.FilterByCategory(expenses, flagCategory))
	if len(months) == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		return nil
	}
	if flagMonths > 0 && len(months) > flagMonths {
		months = months[:flagMonths]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY SPENDING"))
	fmt.Println()

	rows := make([][]string, 0, len(months))
	for i, m := range months {
		change := ""
		if i+1 < len(months) && months[i+1].Spent.IsPositive() {
			change = cli.FormatDelta(m.Spent, months[i+1].Spent)
		}
		rows = append(rows, []string{
			m.Month.Format("Jan 2006"),
			cli.FormatNumber(int64(m.Expenses)),
			cli.FormatMoney(m.Spent),
			change,
			m.TopCategory,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Expenses", "Spent", "vs Prev", "Top Category"},
		Rows:    rows,
	}))

	return nil
}
