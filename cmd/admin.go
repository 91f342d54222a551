package cmd

import (
	"context"
	"fmt"

	"github.com/codex-platform/codex-cli/internal/adapters/render/table"
	"github.com/codex-platform/codex-cli/internal/application"
	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAdminCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer users and view platform metrics (ADMIN session required)",
	}

	cmd.AddCommand(
		newAdminUsersCmd(app),
		newAdminBlockCmd(app, true),
		newAdminBlockCmd(app, false),
		newAdminDashboardCmd(app),
	)

	return cmd
}

func newAdminUsersCmd(app *app) *cobra.Command {
	var (
		page   int
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var users domain.UserPage
			err := fetch(cmd, asJSON, "Fetching users...", func(ctx context.Context) error {
				var err error
				users, err = app.service.ListUsers(ctx, page, limit)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, users)
			}
			rendered, err := table.Users(users)
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Users per page (max 100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}

func newAdminBlockCmd(app *app, blocked bool) *cobra.Command {
	use, short, done := "block", "Block a user", "Blocked"
	if !blocked {
		use, short, done = "unblock", "Unblock a user", "Unblocked"
	}

	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.service.SetUserBlocked(cmd.Context(), application.SetUserBlockedCommand{
				ID:      domain.UserID(args[0]),
				Blocked: blocked,
			})
			if err != nil {
				return explain(err)
			}

			app.logger.Debug().Str("user_id", args[0]).Bool("blocked", blocked).Msg("user block state changed")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s user %s\n", done, args[0])
			return err
		},
	}
}

func newAdminDashboardCmd(app *app) *cobra.Command {
	var (
		users  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show platform metrics and recent users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var dashboard application.Dashboard
			err := fetch(cmd, asJSON, "Fetching dashboard...", func(ctx context.Context) error {
				var err error
				dashboard, err = app.service.Dashboard(ctx, users)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, dashboard)
			}
			rendered, err := table.Dashboard(dashboard)
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().IntVar(&users, "users", 5, "Recent users to include")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}
