package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/config"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/store"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	email := cfg.General.DefaultUser
	days := strconv.Itoa(cfg.General.DefaultDays)
	themeName := cfg.Appearance.Theme
	budget := ""
	if cfg.Budget.Monthly != nil {
		budget = strconv.FormatFloat(*cfg.Budget.Monthly, 'f', -1, 64)
	}

	themeOpts := huh.NewOptions(theme.Names()...)

	fmt.Println()
	fmt.Println("  Welcome to spendwise!")
	fmt.Printf("  Database: %s\n\n", dbPath())

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your email").
				Description("Used to pick your account; created if it doesn't exist.").
				Value(&email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("enter an email address")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Default time range").
				Options(
					huh.NewOption("7 days", "7"),
					huh.NewOption("30 days", "30"),
					huh.NewOption("90 days", "90"),
					huh.NewOption("365 days", "365"),
				).
				Value(&days),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dashboard theme").
				Description("auto follows your light/dark account setting.").
				Options(themeOpts...).
				Value(&themeName),
			huh.NewInput().
				Title("Monthly budget").
				Description("Leave blank to skip budget tracking.").
				Prompt(cli.Currency+" ").
				Value(&budget).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := model.ParseAmount(s)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	user, err := st.ResolveUser(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if user, err = st.CreateUser(ctx, email); err != nil {
			return err
		}
		fmt.Println(cli.RenderOK("Created user " + user.Email))
	case err != nil:
		return err
	}

	var monthly *float64
	if strings.TrimSpace(budget) != "" {
		amount, err := model.ParseAmount(budget)
		if err != nil {
			return err
		}
		v := amount.InexactFloat64()
		monthly = &v
	}
	nDays, _ := strconv.Atoi(days)

	err = saveConfig(func(c *config.Config) {
		c.General.DefaultUser = user.Email
		if nDays > 0 {
			c.General.DefaultDays = nDays
		}
		c.Appearance.Theme = themeName
		c.Budget.Monthly = monthly
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `spendwise setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
