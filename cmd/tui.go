package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/spendwise/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagTUIImport     string
	flagNoAutoRefresh bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUIImport, "import", "", "Import statements from this directory before opening")
	tuiCmd.Flags().BoolVar(&flagNoAutoRefresh, "no-auto-refresh", false, "Disable periodic reloads")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	user := flagUser
	if user == "" {
		user = cfg.General.DefaultUser
	}

	app := tui.NewApp(tui.Options{
		DBPath:          dbPath(),
		User:            user,
		Days:            flagDays,
		Category:        flagCategory,
		ImportDir:       flagTUIImport,
		Theme:           cfg.Appearance.Theme,
		Currency:        cfg.General.Currency,
		MonthlyBudget:   cfg.Budget.Monthly,
		AutoRefresh:     cfg.TUI.AutoRefresh && !flagNoAutoRefresh,
		RefreshInterval: time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second,
		NeedSetup:       user == "",
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
