package cmd

import (
	"context"

	"github.com/codex-platform/codex-cli/internal/adapters/render/table"
	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newProblemsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "problems",
		Aliases: []string{"problem"},
		Short:   "Browse problems",
	}

	cmd.AddCommand(newProblemsListCmd(app), newProblemsShowCmd(app))

	return cmd
}

func newProblemsListCmd(app *app) *cobra.Command {
	var (
		filter     domain.ProblemFilter
		difficulty string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			filter.Difficulty = parsed

			var page domain.ProblemPage
			err = fetch(cmd, asJSON, "Fetching problems...", func(ctx context.Context) error {
				var err error
				page, err = app.service.ListProblems(ctx, filter)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, page)
			}
			rendered, err := table.Problems(page)
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "Problems per page (max 100)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Filter by difficulty (easy, medium, hard)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Filter by title")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}

func newProblemsShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <problem-id>...",
		Short: "Show one or more problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]domain.ProblemID, 0, len(args))
			for _, arg := range args {
				ids = append(ids, domain.ProblemID(arg))
			}

			var problems []domain.Problem
			err := fetch(cmd, asJSON, "Fetching problems...", func(ctx context.Context) error {
				var err error
				problems, err = app.service.GetProblems(ctx, ids)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				if len(problems) == 1 {
					return writeJSON(cmd, problems[0])
				}
				return writeJSON(cmd, problems)
			}
			for _, problem := range problems {
				rendered, err := table.Problem(problem)
				if err := writeRendered(cmd, rendered, err); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}

func newLeaderboardCmd(app *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var board domain.Leaderboard
			err := fetch(cmd, asJSON, "Fetching leaderboard...", func(ctx context.Context) error {
				var err error
				board, err = app.service.Leaderboard(ctx, limit)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, board)
			}
			rendered, err := table.Leaderboard(board)
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Entries to show (max 500)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}
