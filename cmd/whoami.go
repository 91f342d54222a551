package cmd

import (
	"errors"

	"github.com/codex-platform/codex-cli/internal/adapters/render/table"
	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newWhoAmICmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := app.auth.WhoAmI(cmd.Context())
			if err != nil && !errors.Is(err, domain.ErrNotLoggedIn) {
				return err
			}

			if asJSON {
				return writeJSON(cmd, identity)
			}
			rendered, err := table.Identity(identity, app.now())
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}
