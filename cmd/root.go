package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/config"
	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/pipeline"
	"github.com/theirongolddev/spendwise/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagUser     string
	flagDB       string
	flagDays     int
	flagCategory string
	flagQuiet    bool
)

// cfg is loaded once before any command runs.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "spendwise",
	Short:             "Personal expense tracker",
	Long:              "Track expenses, see where the money goes, and estimate income tax.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User email or id (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default in the XDG data dir)")
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Time window in days (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category (substring match)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	if flagDays <= 0 {
		flagDays = cfg.General.DefaultDays
	}
	if flagDays <= 0 {
		flagDays = 30
	}
	if cfg.General.Currency != "" {
		cli.Currency = cfg.General.Currency
	}
	return nil
}

func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	return cfg.DBPath()
}

func openStore() (*store.Store, error) {
	return store.Open(dbPath())
}

// resolveUser finds the user named by --user, falling back to the
// configured default.
func resolveUser(ctx context.Context, st *store.Store) (model.User, error) {
	ref := flagUser
	if ref == "" {
		ref = cfg.General.DefaultUser
	}
	if ref == "" {
		return model.User{}, errors.New("no user selected: pass --user or run `spendwise setup`")
	}
	u, err := st.ResolveUser(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return u, fmt.Errorf("user %q not found (create it with `spendwise users create`)", ref)
	}
	return u, err
}

// loadData opens the store and returns the selected user's expenses.
func loadData(ctx context.Context) (model.User, []model.Expense, error) {
	st, err := openStore()
	if err != nil {
		return model.User{}, nil, err
	}
	defer func() { _ = st.Close() }()

	u, err := resolveUser(ctx, st)
	if err != nil {
		return u, nil, err
	}
	expenses, err := st.ListExpenses(ctx, u.ID)
	if err != nil {
		return u, nil, err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loaded %s expenses for %s\n",
			cli.FormatNumber(int64(len(expenses))), u.Email)
	}
	return u, expenses, nil
}

// applyFilters applies --category and --days and returns the window bounds.
func applyFilters(expenses []model.Expense) ([]model.Expense, time.Time, time.Time) {
	now := time.Now()
	since := now.AddDate(0, 0, -(flagDays - 1))
	until := now

	filtered := pipeline.FilterByCategory(expenses, flagCategory)
	filtered = pipeline.FilterByTime(filtered, since, until)
	return filtered, since, until
}

// saveConfig applies fn to the on-disk config (without env overrides) and
// writes it back, mirroring the change into the live cfg.
func saveConfig(fn func(*config.Config)) error {
	onDisk, err := config.LoadFile(config.ConfigPath())
	if err != nil {
		return err
	}
	fn(&onDisk)
	if err := config.Save(onDisk); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fn(&cfg)
	return nil
}
