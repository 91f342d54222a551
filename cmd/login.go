package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/codex-platform/codex-cli/internal/application"
	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errPasswordSource = errors.New("use either --password or --password-stdin")

func newLoginCmd(app *app) *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
		role          string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedRole, err := domain.ParseRole(role)
			if err != nil {
				return err
			}

			if passwordStdin {
				if password != "" {
					return errPasswordSource
				}
				password, err = readPassword(cmd)
				if err != nil {
					return err
				}
			}

			session, err := app.auth.Login(cmd.Context(), application.LoginCommand{
				Role:     parsedRole,
				Email:    email,
				Password: password,
			})
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return fmt.Errorf("invalid email or password: %w", err)
				}
				return explain(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", session.Email, session.Role)
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "Role to sign in as (USER or ADMIN)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := app.auth.Logout(cmd.Context())
			switch {
			case errors.Is(err, domain.ErrNotLoggedIn):
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return err
			case err != nil:
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}
