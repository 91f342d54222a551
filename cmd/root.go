package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const telemetryFlushTimeout = 5 * time.Second

func Execute() error {
	root, flush := newRootCmd()
	err := root.Execute()
	if flushErr := flush(); flushErr != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", flushErr)
		return errors.Join(err, flushErr)
	}
	return err
}

// newRootCmd returns the command tree and a flush func that must run once
// the command has finished, whatever its outcome.
func newRootCmd() (*cobra.Command, func() error) {
	rootCmd := &cobra.Command{
		Use:           "codex",
		Short:         "Codex CLI: browse problems and manage the platform from the terminal",
		Long:          "codex talks to the Codex platform API. It keeps your session between runs and renews expired credentials transparently.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd, func() error { return nil }
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoAmICmd(app),
		newProblemsCmd(app),
		newLeaderboardCmd(app),
		newAdminCmd(app),
	)

	flush := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		return app.telemetry.Shutdown(ctx)
	}
	return rootCmd, flush
}
