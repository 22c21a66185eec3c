package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	flagTheme    string
	flagLanguage string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the user's theme and language",
	Example: "  spendwise settings\n" +
		"  spendwise settings --theme dark --language hi",
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	settingsCmd.Flags().StringVar(&flagTheme, "theme", "",
		"Theme ("+strings.Join(model.ValidThemes, "|")+")")
	settingsCmd.Flags().StringVar(&flagLanguage, "language", "",
		"Language ("+strings.Join(model.ValidLanguages, "|")+")")
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, _ []string) error {
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
	settings, err := st.GetSettings(ctx, user.ID)
	if err != nil {
		return err
	}

	if flagTheme != "" || flagLanguage != "" {
		if flagTheme != "" {
			settings.Theme = strings.ToLower(flagTheme)
		}
		if flagLanguage != "" {
			settings.Language = strings.ToLower(flagLanguage)
		}
		if err := st.UpdateSettings(ctx, settings); err != nil {
			return err
		}
		if settings, err = st.GetSettings(ctx, user.ID); err != nil {
			return err
		}
		fmt.Println(cli.RenderOK("Settings saved"))
	}

	fmt.Println()
	fmt.Println(cli.RenderMetric("User", user.Email))
	fmt.Println(cli.RenderMetric("Role", string(user.Role)))
	fmt.Println(cli.RenderMetric("Theme", settings.Theme))
	fmt.Println(cli.RenderMetric("Language", settings.Language))
	fmt.Println(cli.RenderMetric("Updated", humanize.Time(settings.UpdatedAt)))
	fmt.Println()
	return nil
}
