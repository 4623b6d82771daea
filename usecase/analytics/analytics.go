package analytics

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
)

const maxPerformanceDays = 365

type Dashboard struct {
	Overview           Overview     `json:"overview"`
	ProductivityTrends []TrendPoint `json:"productivity_trends"`
	TimeTracking       TimeTracking `json:"time_tracking"`
	GeneratedAt        time.Time    `json:"generated_at"`
}

type ProjectReport struct {
	Project   domain.ProjectView  `json:"project"`
	Stats     ProjectStats        `json:"stats"`
	Trends    []TrendPoint        `json:"productivity_trends"`
	TimeSpent TimeTracking        `json:"time_tracking"`
	Estimate  CompletionEstimate  `json:"completion_estimate"`
	Assignees []AssigneeBreakdown `json:"assignees"`
	Generated time.Time           `json:"generated_at"`
}

type Performance struct {
	UserID     string       `json:"user_id"`
	PeriodDays int          `json:"period_days"`
	Data       []TrendPoint `json:"performance_data"`
}

type ProjectSummary struct {
	domain.ProjectView
	Stats ProjectStats `json:"stats"`
}

type PMDashboard struct {
	Overview    Overview            `json:"overview"`
	Projects    []ProjectSummary    `json:"projects"`
	Teams       []TeamBreakdown     `json:"team_breakdown"`
	Assignees   []AssigneeBreakdown `json:"assignee_breakdown"`
	Estimate    CompletionEstimate  `json:"completion_estimate"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type MemberWorkload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Breakdown
	ActualMinutes int `json:"actual_minutes"`
}

type TeamWorkload struct {
	ProjectID string           `json:"project_id"`
	Members   []MemberWorkload `json:"members"`
	Teams     []TeamBreakdown  `json:"teams"`
}

// UseCase loads the actor's visible snapshot and runs the computations on it.
// Nothing is cached; every call reads current state.
type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	teams    repository.TeamRepository
	users    repository.UserRepository
	logger   *zap.Logger

	TrendDays   int
	HistoryDays int
	Now         func() time.Time
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	teams repository.TeamRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:       tasks,
		projects:    projects,
		teams:       teams,
		users:       users,
		logger:      logger,
		TrendDays:   7,
		HistoryDays: 30,
		Now:         time.Now,
	}
}

// Dashboard returns overview, trends and time tracking over everything the actor sees.
func (uc *UseCase) Dashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error) {
	snap, err := uc.snapshot(ctx, actor, "")
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Overview:           ComputeOverview(snap),
		ProductivityTrends: ComputeTrends(snap.Tasks, snap.Now, uc.TrendDays),
		TimeTracking:       ComputeTimeTracking(snap.Tasks),
		GeneratedAt:        snap.Now,
	}, nil
}

// ProjectAnalytics reports on one project the actor can view.
func (uc *UseCase) ProjectAnalytics(ctx context.Context, actor domain.Actor, projectID string) (*ProjectReport, error) {
	project, err := usecase.RequireProject(ctx, uc.projects, actor, projectID, domain.CapView)
	if err != nil {
		return nil, err
	}
	tasks, err := uc.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := uc.Now()
	return &ProjectReport{
		Project:   project.View(),
		Stats:     ComputeProjectStats(tasks),
		Trends:    ComputeTrends(tasks, now, uc.TrendDays),
		TimeSpent: ComputeTimeTracking(tasks),
		Estimate:  EstimateCompletion(tasks, now, uc.HistoryDays),
		Assignees: ComputeAssigneeBreakdown(tasks, now),
		Generated: now,
	}, nil
}

// Performance returns daily metrics for userID over the last days days.
// Users may read their own numbers; project managers and admins anyone's.
func (uc *UseCase) Performance(ctx context.Context, actor domain.Actor, userID string, days int) (*Performance, error) {
	if days <= 0 || days > maxPerformanceDays {
		return nil, domain.Validationf("days must be between 1 and %d", maxPerformanceDays)
	}
	if userID != actor.UserID && !actor.IsElevated() {
		return nil, domain.ErrUserNotFound
	}
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	snap, err := uc.snapshot(ctx, actor, "")
	if err != nil {
		return nil, err
	}
	var mine []domain.Task
	for i := range snap.Tasks {
		if involves(&snap.Tasks[i], userID) {
			mine = append(mine, snap.Tasks[i])
		}
	}
	return &Performance{
		UserID:     userID,
		PeriodDays: days,
		Data:       ComputeTrends(mine, snap.Now, days),
	}, nil
}

// TimeTracking aggregates tracked time, optionally for a single project.
func (uc *UseCase) TimeTracking(ctx context.Context, actor domain.Actor, projectID string) (*TimeTracking, error) {
	if projectID != "" {
		if _, err := usecase.RequireProject(ctx, uc.projects, actor, projectID, domain.CapView); err != nil {
			return nil, err
		}
	}
	snap, err := uc.snapshot(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	tt := ComputeTimeTracking(snap.Tasks)
	return &tt, nil
}

// PMDashboard is the project manager view: managed projects with their
// stats plus team and assignee breakdowns and a completion estimate.
func (uc *UseCase) PMDashboard(ctx context.Context, actor domain.Actor) (*PMDashboard, error) {
	if !actor.IsElevated() {
		return nil, domain.ErrForbidden
	}
	snap, err := uc.snapshot(ctx, actor, "")
	if err != nil {
		return nil, err
	}

	byProject := make(map[string][]domain.Task)
	for _, t := range snap.Tasks {
		if t.ProjectID != "" {
			byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
		}
	}
	projects := make([]ProjectSummary, 0, len(snap.Projects))
	for i := range snap.Projects {
		p := &snap.Projects[i]
		projects = append(projects, ProjectSummary{
			ProjectView: p.View(),
			Stats:       ComputeProjectStats(byProject[p.ID]),
		})
	}

	return &PMDashboard{
		Overview:    ComputeOverview(snap),
		Projects:    projects,
		Teams:       ComputeTeamBreakdown(snap),
		Assignees:   ComputeAssigneeBreakdown(snap.Tasks, snap.Now),
		Estimate:    EstimateCompletion(snap.Tasks, snap.Now, uc.HistoryDays),
		GeneratedAt: snap.Now,
	}, nil
}

// ProjectTeam reports the workload of everyone involved in a managed project.
func (uc *UseCase) ProjectTeam(ctx context.Context, actor domain.Actor, projectID string) (*TeamWorkload, error) {
	if !actor.IsElevated() {
		return nil, domain.ErrForbidden
	}
	project, err := usecase.RequireProject(ctx, uc.projects, actor, projectID, domain.CapManage)
	if err != nil {
		return nil, err
	}
	tasks, err := uc.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := uc.Now()

	memberIDs := project.Stakeholders()
	for _, t := range tasks {
		memberIDs = append(memberIDs, t.AssignedUsers...)
	}
	memberIDs = dedupe(memberIDs)

	names := make(map[string]string, len(memberIDs))
	users, err := uc.users.ListByIDs(ctx, memberIDs)
	if err != nil {
		uc.logger.Warn("member lookup failed", zap.String("project_id", projectID), zap.Error(err))
	}
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}

	members := make([]MemberWorkload, 0, len(memberIDs))
	for _, id := range memberIDs {
		row := MemberWorkload{UserID: id, Username: names[id]}
		for i := range tasks {
			t := &tasks[i]
			if !containsID(t.AssignedUsers, id) {
				continue
			}
			row.add(t, now)
			if t.ActualDuration != nil {
				row.ActualMinutes += *t.ActualDuration
			}
		}
		members = append(members, row)
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })

	teams, err := uc.teamsByID(ctx, project.AssignedTeams)
	if err != nil {
		return nil, err
	}
	return &TeamWorkload{
		ProjectID: projectID,
		Members:   members,
		Teams:     ComputeTeamBreakdown(Snapshot{Tasks: tasks, Teams: teams, Now: now}),
	}, nil
}

// snapshot loads tasks, projects and relevant teams visible to actor.
func (uc *UseCase) snapshot(ctx context.Context, actor domain.Actor, projectID string) (Snapshot, error) {
	taskFilter, err := usecase.TaskScope(ctx, uc.projects, actor)
	if err != nil {
		return Snapshot{}, err
	}
	taskFilter.ProjectID = projectID
	taskFilter.Unbounded = true
	tasks, err := uc.tasks.List(ctx, taskFilter)
	if err != nil {
		return Snapshot{}, err
	}

	projectFilter := usecase.ProjectScope(actor)
	projectFilter.Unbounded = true
	projects, err := uc.projects.List(ctx, projectFilter)
	if err != nil {
		return Snapshot{}, err
	}

	teamIDs := append([]string(nil), actor.TeamIDs...)
	for _, t := range tasks {
		teamIDs = append(teamIDs, t.AssignedTeams...)
	}
	teams, err := uc.teamsByID(ctx, dedupe(teamIDs))
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Tasks: tasks, Projects: projects, Teams: teams, Now: uc.Now()}, nil
}

func (uc *UseCase) teamsByID(ctx context.Context, ids []string) ([]domain.Team, error) {
	if len(ids) == 0 || uc.teams == nil {
		return nil, nil
	}
	all, err := uc.teams.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Team
	for _, team := range all {
		if containsID(ids, team.ID) {
			out = append(out, team)
		}
	}
	return out, nil
}

func involves(t *domain.Task, userID string) bool {
	return containsID(t.Owners, userID) || containsID(t.AssignedUsers, userID) || containsID(t.Collaborators, userID)
}

func containsID(values []string, id string) bool {
	for _, v := range values {
		if v == id {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
