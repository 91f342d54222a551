package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/spf13/cobra"
)

var errSessionExpired = errors.New("session expired or missing, run `codex login`")

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeRendered(cmd *cobra.Command, rendered string, err error) error {
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// fetch runs load behind a spinner on stderr unless the output is JSON, where
// stdout has to stay machine readable and the spinner is skipped entirely.
func fetch(cmd *cobra.Command, asJSON bool, label string, load func(context.Context) error) error {
	var err error
	if asJSON {
		err = load(cmd.Context())
	} else {
		err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, load)
	}

	return explain(err)
}

func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUnauthorized):
		return fmt.Errorf("%w: %w", errSessionExpired, err)
	case errors.Is(err, domain.ErrForbidden):
		return fmt.Errorf("%w: your role cannot do this", err)
	default:
		return err
	}
}
