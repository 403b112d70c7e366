package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"greensprint/internal/recordaccess"
)

func newLeaderboardCommand(ctx *commandContext) *cobra.Command {
	var (
		period string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank planters by trees planted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				board, err := access.Leaderboard(cmd.Context(), period, limit)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, board)
				}
				if len(board.Entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No trees planted yet")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Top planters (%s)\n", board.Period)
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Rank", "Planter", "Trees"},
					buildLeaderboardRows(board.Entries),
					[]columnAlignment{alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", "all", "Ranking period (all, year, month, week)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries to show")
	return cmd
}
