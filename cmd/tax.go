package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/tax"

	"github.com/spf13/cobra"
)

var flagSlabs bool

var taxCmd = &cobra.Command{
	Use:   "tax [income]",
	Short: "Estimate income tax for an annual income",
	Long: "Estimate tax under the built-in progressive slab schedule, including the 4% cess.\n" +
		"The estimate is illustrative, not filing advice.",
	Example: "  spendwise tax 12,00,000\n  spendwise tax --slabs",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runTax,
}

func init() {
	taxCmd.Flags().BoolVar(&flagSlabs, "slabs", false, "Print the slab schedule")
	rootCmd.AddCommand(taxCmd)
}

func runTax(_ *cobra.Command, args []string) error {
	if flagSlabs {
		printSlabs()
		if len(args) == 0 {
			return nil
		}
	}
	if len(args) == 0 {
		return errors.New("income required (e.g. `spendwise tax 900000`)")
	}

	income, err := tax.ParseIncome(args[0])
	if err != nil {
		return err
	}
	res, err := tax.Estimate(income)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TAX ESTIMATE"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Amount"},
		Rows: [][]string{
			{"Annual Income", cli.FormatMoney(res.Income)},
			{"Tax", cli.FormatMoney(res.RawTax)},
			{"Cess (4%)", cli.FormatMoney(res.Cess)},
			{"Total Tax", cli.FormatMoney(res.Tax)},
			{"---"},
			{"Take-home", cli.FormatMoney(res.TakeHome)},
			{"Slab", res.SlabLabel},
			{"Suggested Form", res.SuggestedForm},
		},
	}))
	return nil
}

func printSlabs() {
	fmt.Println()
	fmt.Println(cli.RenderTitle("TAX SLABS"))
	fmt.Println()

	rows := make([][]string, 0, len(tax.Schedule()))
	for _, b := range tax.Schedule() {
		rows = append(rows, []string{
			b.Label,
			b.Rate.Shift(2).String() + "%",
			cli.FormatMoneyWhole(b.BaseTax),
			b.Form,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Income Range", "Rate", "Base Tax", "Form"},
		Rows:    rows,
	}))
}
