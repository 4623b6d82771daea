package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/fastygo/taskpulse/repository/postgres"
	projectUC "github.com/fastygo/taskpulse/usecase/project"
)

func recalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc-projects",
		Short: "Recompute progress and status for every project",
		Long: `Recompute task counts, progress and auto-calculated status for every
project from its current tasks. Use it to repair projects whose refresh
failed after a task write.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, e *env, pool *pgxpool.Pool) error {
				uc := projectUC.New(postgres.NewProjectRepository(pool), postgres.NewTaskRepository(pool), nil, e.logger)
				uc.StaleAfter = e.cfg.Analytics.StaleAfter
				n, err := uc.RecalculateAll(ctx)
				if err != nil {
					return fmt.Errorf("recalculated %d project(s) before failing: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recalculated %d project(s)\n", n)
				return nil
			})
		},
	}
}
