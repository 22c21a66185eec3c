package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagBars bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spend by category",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().BoolVar(&flagBars, "bars", false, "Render as a bar chart")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	_, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		return nil
	}

	filtered, _, _ := applyFilters(expenses)
	cats := pipeline.AggregateCategories(filtered)
	if len(cats) == 0 {
		fmt.Println("\n  No spending in the selected time range.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CATEGORIES  Last %dd", flagDays)))
	fmt.Println()

	if flagBars {
		maxSpent := 0.0
		labelW := 0
		for _, c := range cats {
			if v := c.Spent.InexactFloat64(); v > maxSpent {
				maxSpent = v
			}
			if len(c.Category) > labelW {
				labelW = len(c.Category)
			}
		}
		for _, c := range cats {
			fmt.Println(cli.RenderHorizontalBar(c.Category, labelW, c.Spent.InexactFloat64(), maxSpent, 30,
				fmt.Sprintf("%s  %s", cli.FormatMoneyShort(c.Spent), cli.FormatPercent(c.SharePercent))))
		}
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{
			c.Category,
			cli.FormatNumber(int64(c.Expenses)),
			cli.FormatMoney(c.Spent),
			cli.FormatPercent(c.SharePercent),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Expenses", "Spent", "Share"},
		Rows:    rows,
	}))

	return nil
}
