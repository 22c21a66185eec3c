package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/theirongolddev/spendwise/internal/config"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the first-run answers bound to the huh form.
type setupValues struct {
	email  string
	days   string
	theme  string
	budget string
}

// newSetupForm builds the first-run wizard, prefilled from opts.
func newSetupForm(opts Options, v *setupValues) *huh.Form {
	v.email = opts.User
	v.days = strconv.Itoa(opts.Days)
	v.theme = opts.Theme
	if v.theme == "" {
		v.theme = theme.Auto
	}
	if opts.MonthlyBudget != nil {
		v.budget = strconv.FormatFloat(*opts.MonthlyBudget, 'f', -1, 64)
	}

	dayOpts := huh.NewOptions("7", "30", "90", "365")
	for i := range dayOpts {
		dayOpts[i].Key = dayOpts[i].Value + " days"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to spendwise!").
				Description("A few questions and you're in. Esc skips setup."),
			huh.NewInput().
				Title("Your email").
				Description("Picks your account; created if it doesn't exist.").
				Value(&v.email).
				Validate(validateEmail),
			huh.NewSelect[string]().
				Title("Default time range").
				Options(dayOpts...).
				Value(&v.days),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dashboard theme").
				Description("auto follows your light/dark account setting.").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&v.theme),
			huh.NewInput().
				Title("Monthly budget").
				Description("Leave blank to skip budget tracking.").
				Prompt(opts.Currency+" ").
				Value(&v.budget).
				Validate(validateBudget),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(true)
}

func validateEmail(s string) error {
	if !strings.Contains(strings.TrimSpace(s), "@") {
		return errors.New("enter an email address")
	}
	return nil
}

func validateBudget(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := model.ParseAmount(s)
	return err
}

// saveSetupConfig applies the wizard answers to the running app and
// writes them to the config file. Save errors are ignored; the answers
// still apply to this session.
func (a *App) saveSetupConfig() {
	v := a.setupVals
	a.opts.User = strings.TrimSpace(v.email)
	if n, err := strconv.Atoi(v.days); err == nil && n > 0 {
		a.opts.Days = n
	}
	a.opts.Theme = v.theme
	a.opts.MonthlyBudget = nil
	if amount, err := model.ParseAmount(v.budget); err == nil && strings.TrimSpace(v.budget) != "" {
		f := amount.InexactFloat64()
		a.opts.MonthlyBudget = &f
	}

	cfg, _ := config.LoadFile(config.ConfigPath())
	cfg.General.DefaultUser = a.opts.User
	cfg.General.DefaultDays = a.opts.Days
	cfg.Appearance.Theme = a.opts.Theme
	cfg.Budget.Monthly = a.opts.MonthlyBudget
	_ = config.Save(cfg)
}
