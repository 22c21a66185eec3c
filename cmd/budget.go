package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/config"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var flagSetBudget string

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Month-to-date spend against the monthly budget",
	RunE:  runBudget,
}

func init() {
	budgetCmd.Flags().StringVar(&flagSetBudget, "set", "", "Save a new monthly budget to the config file")
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, _ []string) error {
	if flagSetBudget != "" {
		amount, err := model.ParseAmount(flagSetBudget)
		if err != nil {
			return err
		}
		v := amount.InexactFloat64()
		if err := saveConfig(func(c *config.Config) { c.Budget.Monthly = &v }); err != nil {
			return err
		}
		fmt.Printf("  Monthly budget set to %s\n", cli.FormatMoney(amount))
	}

	if cfg.Budget.Monthly == nil {
		return errors.New("no monthly budget configured (use `spendwise budget --set 25000`)")
	}

	_, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	now := time.Now()
	budget := decimal.NewFromFloat(*cfg.Budget.Monthly)
	bs := pipeline.ComputeBudget(pipeline.FilterByCategory(expenses, flagCategory), budget, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + now.Format("January 2006")))
	fmt.Println()

	fmt.Println(cli.RenderMetric("Budget", cli.FormatMoney(bs.Budget)))
	fmt.Println(cli.RenderMetric("Spent so far", cli.FormatMoney(bs.CurrentSpend)))
	fmt.Println(cli.RenderMetric("Used", cli.FormatPercent(bs.BudgetUsedPercent)))
	fmt.Println(cli.RenderMetric("Daily burn", cli.FormatMoney(bs.DailyBurnRate)+"/day"))
	fmt.Println(cli.RenderMetric("Projected month", cli.FormatMoney(bs.ProjectedMonthly)))
	fmt.Println(cli.RenderMetric("Days remaining", fmt.Sprintf("%d", bs.DaysRemaining)))
	fmt.Println()

	if bs.OverBudget {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("On track to exceed the budget by %s",
			cli.FormatMoney(bs.ProjectedMonthly.Sub(bs.Budget)))))
	} else {
		fmt.Println(cli.RenderOK(fmt.Sprintf("On track: %s of headroom at the current pace",
			cli.FormatMoney(bs.Budget.Sub(bs.ProjectedMonthly)))))
	}
	fmt.Println()
	return nil
}
