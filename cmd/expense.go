package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/store"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagAmount      string
	flagDescription string
	flagDate        string
	flagLimit       int
	flagYes         bool
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"expenses", "e"},
	Short:   "Add, list, edit, and delete expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense (interactive when --amount is omitted)",
	Example: "  spendwise expense add --amount 450 -c \"Food & Dining\" --description lunch\n" +
		"  spendwise expense add",
	Args: cobra.NoArgs,
	RunE: runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses in the selected window",
	Args:  cobra.NoArgs,
	RunE:  runExpenseList,
}

var expenseEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of an expense (id or unique prefix)",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseEdit,
}

var expenseDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an expense (id or unique prefix)",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpenseDelete,
}

func init() {
	for _, c := range []*cobra.Command{expenseAddCmd, expenseEditCmd} {
		c.Flags().StringVar(&flagAmount, "amount", "", "Amount, e.g. 1,250.50")
		c.Flags().StringVar(&flagDescription, "description", "", "Optional note")
		c.Flags().StringVar(&flagDate, "date", "", "Date as YYYY-MM-DD (default today)")
	}
	expenseListCmd.Flags().IntVar(&flagLimit, "limit", 50, "Maximum rows to show (0 for all)")
	expenseDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")

	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseEditCmd, expenseDeleteCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(cmd *cobra.Command, _ []string) error {
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

	if flagAmount == "" {
		if err := expenseForm(); err != nil {
			return err
		}
	}

	e, err := expenseFromFlags(model.Expense{UserID: user.ID, Date: time.Now()}, cmd)
	if err != nil {
		return err
	}
	saved, err := st.AddExpense(ctx, e)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderOK(fmt.Sprintf("Added %s  %s on %s  (%s)",
		cli.FormatMoney(saved.Amount), saved.Category,
		saved.Date.Format(model.DateLayout), shortID(saved.ID))))
	return nil
}

// expenseForm fills the add flags interactively.
func expenseForm() error {
	if flagDate == "" {
		flagDate = time.Now().Format(model.DateLayout)
	}
	if flagCategory == "" {
		flagCategory = model.CategoryFood
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Prompt(cli.Currency+" ").
				Value(&flagAmount).
				Validate(func(s string) error {
					_, err := model.ParseAmount(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(model.Categories...)...).
				Value(&flagCategory),
			huh.NewInput().
				Title("Description").
				Placeholder("optional").
				Value(&flagDescription),
			huh.NewInput().
				Title("Date").
				Placeholder(model.DateLayout).
				Value(&flagDate).
				Validate(func(s string) error {
					_, err := model.ParseDate(s)
					return err
				}),
		),
	).Run()
}

// expenseFromFlags overlays the add/edit flags onto base. On edit only flags
// the user actually passed are applied. --category names the category here
// rather than filtering.
func expenseFromFlags(base model.Expense, cmd *cobra.Command) (model.Expense, error) {
	e := base
	set := func(name, v string) bool {
		return v != "" || cmd.Flags().Changed(name)
	}

	if set("amount", flagAmount) {
		amount, err := model.ParseAmount(flagAmount)
		if err != nil {
			return e, err
		}
		e.Amount = amount
	}
	if set("category", flagCategory) {
		e.Category = strings.TrimSpace(flagCategory)
	}
	if set("description", flagDescription) {
		e.Description = strings.TrimSpace(flagDescription)
	}
	if set("date", flagDate) {
		d, err := model.ParseDate(flagDate)
		if err != nil {
			return e, err
		}
		e.Date = d
	}
	if e.Category == "" {
		e.Category = model.CategoryOthers
	}
	return e, nil
}

func runExpenseList(cmd *cobra.Command, _ []string) error {
	_, expenses, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	filtered, _, _ := applyFilters(expenses)
	if len(filtered) == 0 {
		fmt.Println("\n  No expenses in the selected time range.")
		return nil
	}

	shown := filtered
	if flagLimit > 0 && len(shown) > flagLimit {
		shown = shown[:flagLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EXPENSES  Last %dd", flagDays)))
	fmt.Println()

	rows := make([][]string, 0, len(shown))
	for _, e := range shown {
		desc := e.Description
		if desc == "" && e.Source != "" {
			desc = cli.Muted("(imported)")
		}
		rows = append(rows, []string{
			shortID(e.ID),
			e.Date.Format(model.DateLayout),
			e.Category,
			cli.FormatMoney(e.Amount),
			desc,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Date", "Category", "Amount", "Description"},
		Rows:    rows,
	}))

	if len(shown) < len(filtered) {
		fmt.Printf("\n  Showing %d of %s (use --limit 0 for all)\n",
			len(shown), cli.FormatNumber(int64(len(filtered))))
	}
	return nil
}

func runExpenseEdit(cmd *cobra.Command, args []string) error {
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
	existing, err := findExpense(ctx, st, user.ID, args[0])
	if err != nil {
		return err
	}

	updated, err := expenseFromFlags(existing, cmd)
	if err != nil {
		return err
	}
	if err := st.UpdateExpense(ctx, updated); err != nil {
		return err
	}

	fmt.Println(cli.RenderOK(fmt.Sprintf("Updated %s: %s  %s on %s",
		shortID(updated.ID), cli.FormatMoney(updated.Amount), updated.Category,
		updated.Date.Format(model.DateLayout))))
	return nil
}

func runExpenseDelete(cmd *cobra.Command, args []string) error {
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
	e, err := findExpense(ctx, st, user.ID, args[0])
	if err != nil {
		return err
	}

	if !flagYes {
		ok, err := confirm(fmt.Sprintf("Delete %s %s on %s?",
			cli.FormatMoney(e.Amount), e.Category, e.Date.Format(model.DateLayout)))
		if err != nil || !ok {
			return err
		}
	}

	if err := st.DeleteExpense(ctx, e.ID); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("Deleted " + shortID(e.ID)))
	return nil
}

// findExpense resolves a full id or a unique id prefix among the user's
// expenses.
func findExpense(ctx context.Context, st *store.Store, userID, ref string) (model.Expense, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Expense{}, errors.New("expense id required")
	}

	e, err := st.GetExpense(ctx, ref)
	if err == nil {
		if e.UserID != userID {
			return model.Expense{}, fmt.Errorf("expense %s: %w", ref, store.ErrNotFound)
		}
		return e, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Expense{}, err
	}

	all, err := st.ListExpenses(ctx, userID)
	if err != nil {
		return model.Expense{}, err
	}
	var matches []model.Expense
	for _, e := range all {
		if strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return model.Expense{}, fmt.Errorf("expense %s: %w", ref, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Expense{}, fmt.Errorf("expense prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// confirm asks a yes/no question; a "no" answer prints "Cancelled.".
func confirm(title string) (bool, error) {
	ok := false
	if err := huh.NewConfirm().Title(title).Value(&ok).Run(); err != nil {
		return false, err
	}
	if !ok {
		fmt.Println("  Cancelled.")
	}
	return ok, nil
}
