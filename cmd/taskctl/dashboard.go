package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository/postgres"
	analyticsUC "github.com/fastygo/taskpulse/usecase/analytics"
	authUC "github.com/fastygo/taskpulse/usecase/auth"
)

func dashboardCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print a user's dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return withPool(cmd.Context(), func(ctx context.Context, e *env, pool *pgxpool.Pool) error {
				users := postgres.NewUserRepository(pool)
				teams := postgres.NewTeamRepository(pool)
				actor, err := authUC.New(users, teams, nil, nil, e.logger).ResolveActor(ctx, userID)
				if err != nil {
					return err
				}

				uc := analyticsUC.New(postgres.NewTaskRepository(pool), postgres.NewProjectRepository(pool), teams, users, e.logger)
				uc.TrendDays = e.cfg.Analytics.TrendDays
				uc.HistoryDays = e.cfg.Analytics.HistoryDays
				dash, err := uc.Dashboard(ctx, actor)
				if err != nil {
					return err
				}
				renderDashboard(cmd, actor, dash)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id to view the dashboard as")
	return cmd
}

func renderDashboard(cmd *cobra.Command, actor domain.Actor, dash *analyticsUC.Dashboard) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dashboard for %s (%s) at %s\n\n", actor.UserID, actor.Role, dash.GeneratedAt.Format("2006-01-02 15:04 MST"))

	ov := table.NewWriter()
	ov.SetOutputMirror(out)
	ov.SetTitle("Overview")
	ov.AppendHeader(table.Row{"Tasks", "Completed", "In progress", "Overdue", "Completion %", "Projects", "Active"})
	o := dash.Overview
	ov.AppendRow(table.Row{o.TotalTasks, o.CompletedTasks, o.InProgressTasks, o.OverdueTasks, o.CompletionRate, o.TotalProjects, o.ActiveProjects})
	ov.Render()

	tr := table.NewWriter()
	tr.SetOutputMirror(out)
	tr.SetTitle("Productivity")
	tr.AppendHeader(table.Row{"Date", "Created", "Completed", "Minutes", "Accuracy", "Score"})
	for _, p := range dash.ProductivityTrends {
		tr.AppendRow(table.Row{p.Date, p.TasksCreated, p.TasksCompleted, p.TotalTimeSpent, p.AccuracyScore, p.ProductivityScore})
	}
	tr.Render()

	tt := dash.TimeTracking
	tm := table.NewWriter()
	tm.SetOutputMirror(out)
	tm.SetTitle(fmt.Sprintf("Time by project (estimated %.2fh, actual %.2fh, accuracy %.2f%%)",
		tt.TotalEstimatedHours, tt.TotalActualHours, tt.AccuracyPercentage))
	tm.AppendHeader(table.Row{"Project", "Minutes"})
	names := make([]string, 0, len(tt.TimeByProject))
	for name := range tt.TimeByProject {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tm.AppendRow(table.Row{name, tt.TimeByProject[name]})
	}
	tm.AppendFooter(table.Row{"Tasks analyzed", tt.TasksAnalyzed})
	tm.Render()
}
