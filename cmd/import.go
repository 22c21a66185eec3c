package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/pipeline"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import expenses from statement CSV files",
	Long: "Import a CSV file, or every *.csv under a directory. Files need date, amount,\n" +
		"and category columns (description optional). Unchanged files are skipped;\n" +
		"a changed file replaces the rows from its previous import.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	user, err := resolveUser(ctx, st)
	if err != nil {
		return err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", args[0])
	}
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing %s [%d/%d]", cli.RenderProgressBar(current, total, 24), current, total)
	}

	start := time.Now()
	result, err := pipeline.Import(ctx, args[0], user.ID, st, progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet && result.ParsedFiles+result.FileErrors > 0 {
		fmt.Fprintln(os.Stderr)
	}

	if result.TotalFiles == 0 {
		fmt.Println("\n  No CSV files found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderMetric("Files found", cli.FormatNumber(int64(result.TotalFiles))))
	fmt.Println(cli.RenderMetric("Unchanged (skipped)", cli.FormatNumber(int64(result.Unchanged))))
	fmt.Println(cli.RenderMetric("Imported files", cli.FormatNumber(int64(result.ParsedFiles))))
	fmt.Println(cli.RenderMetric("Expenses stored", cli.FormatNumber(int64(result.Imported))))
	fmt.Println(cli.RenderMetric("Took", time.Since(start).Round(time.Millisecond).String()))
	fmt.Println()

	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be read\n", result.FileErrors)
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d rows skipped (bad date, amount, or category)\n", result.ParseErrors)
	}
	return nil
}
