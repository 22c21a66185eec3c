package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/insight"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagNarrative bool

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Rule-based observations about your spending",
	Long: "Generate insights over all recorded expenses (the --days window is not applied;\n" +
		"--category narrows the records considered).",
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().BoolVar(&flagNarrative, "narrative", false, "Print insights as a single paragraph")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	user, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	expenses = pipeline.FilterByCategory(expenses, flagCategory)

	facts, err := insight.Analyze(expenses, time.Now())
	if err != nil {
		return fmt.Errorf("generating insights: %w", err)
	}
	sentences := insight.Formatter{Currency: cli.Currency}.Render(facts)

	if flagNarrative {
		fmt.Println(insight.Narrative(sentences))
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("INSIGHTS  " + user.Email))
	fmt.Println()
	for i, s := range sentences {
		fmt.Printf("  %d. %s\n", i+1, s)
	}
	fmt.Println()
	return nil
}
