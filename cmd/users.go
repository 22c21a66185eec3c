package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendwise/internal/cli"
	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var flagDemote bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users with their expense totals",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a user with default settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersCreate,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <email|id>",
	Short: "Delete a user and all of their expenses (admins are protected)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote <email|id>",
	Short: "Grant the admin role (--demote to revoke)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersPromote,
}

func init() {
	usersDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")
	usersPromoteCmd.Flags().BoolVar(&flagDemote, "demote", false, "Revoke the admin role instead")
	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersDeleteCmd, usersPromoteCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	users, err := st.ListUsers(ctx)
	if err != nil {
		return err
	}
	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("\n  No users yet. Create one with `spendwise users create <email>`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("USERS"))
	fmt.Println()

	rows := make([][]string, 0, len(users)+2)
	for _, u := range users {
		rows = append(rows, []string{
			u.Email,
			string(u.Role),
			cli.FormatNumber(int64(u.Expenses)),
			cli.FormatMoney(u.Spent),
			humanize.Time(u.CreatedAt),
			shortID(u.ID),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		fmt.Sprintf("%s users", humanize.Comma(int64(stats.Users))),
		"",
		cli.FormatNumber(int64(stats.Expenses)),
		cli.FormatMoney(stats.TotalSpent),
		"",
		"",
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Email", "Role", "Expenses", "Spent", "Joined", "ID"},
		Rows:    rows,
	}))
	return nil
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	u, err := st.CreateUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("Created %s (%s)", u.Email, u.ID)))
	if cfg.General.DefaultUser == "" {
		fmt.Println(cli.Muted("  Make it the default with `spendwise setup`."))
	}
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	u, err := st.ResolveUser(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}
	if !flagYes {
		ok, err := confirm(fmt.Sprintf("Delete %s and all of their expenses?", u.Email))
		if err != nil || !ok {
			return err
		}
	}
	if err := st.DeleteUser(ctx, u.ID); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("Deleted " + u.Email))
	return nil
}

func runUsersPromote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	u, err := st.ResolveUser(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %s: %w", args[0], err)
	}
	role := model.RoleAdmin
	if flagDemote {
		role = model.RoleUser
	}
	if err := st.SetRole(ctx, u.ID, role); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("%s is now %s", u.Email, role)))
	return nil
}
