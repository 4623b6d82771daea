package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository/memory"
)

var (
	alice = domain.Actor{UserID: "alice", Role: domain.RoleUser}
	bob   = domain.Actor{UserID: "bob", Role: domain.RoleUser, TeamIDs: []string{"t1"}}
	pm    = domain.Actor{UserID: "pm", Role: domain.RoleProjectManager}
)

type fixture struct {
	uc        *UseCase
	projectID string
}

// newFixture builds one project "Site" owned by alice and managed by pm with a
// completed task assigned to bob and an open one, plus a private task of bob's.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.Apply(memory.Seed{
		Users: []domain.User{
			{ID: "alice", Username: "alice"},
			{ID: "bob", Username: "bobby"},
			{ID: "pm", Email: "pm@example.com", Role: domain.RoleProjectManager},
		},
		Teams: []domain.Team{{ID: "t1", Name: "Core", MemberIDs: []string{"bob"}}},
	})
	tasks := memory.NewTaskRepository(store)
	projects := memory.NewProjectRepository(store)

	p, err := projects.Create(ctx, &domain.Project{
		Name:            "Site",
		OwnerID:         "alice",
		ProjectManagers: []string{"pm"},
		AssignedTeams:   []string{"t1"},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	seed := []*domain.Task{
		{
			Title:             "shipped",
			Status:            domain.TaskCompleted,
			Priority:          domain.PriorityHigh,
			ProjectID:         p.ID,
			ProjectName:       "Site",
			Owners:            []string{"alice"},
			AssignedUsers:     []string{"bob"},
			EstimatedDuration: minutes(60),
			ActualDuration:    minutes(30),
			CreatedAt:         now.Add(-2 * time.Hour),
			CompletedAt:       at(now.Add(-time.Hour)),
		},
		{
			Title:     "open",
			Status:    domain.TaskTodo,
			Priority:  domain.PriorityMedium,
			ProjectID: p.ID,
			Owners:    []string{"alice"},
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			Title:     "bob's own",
			Status:    domain.TaskTodo,
			Priority:  domain.PriorityLow,
			Owners:    []string{"bob"},
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}
	for _, task := range seed {
		if _, err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	uc := New(tasks, projects, memory.NewTeamRepository(store), memory.NewUserRepository(store), nil)
	uc.Now = func() time.Time { return now }
	return &fixture{uc: uc, projectID: p.ID}
}

func TestDashboardIsScopedToActor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.uc.Dashboard(ctx, alice)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if got.Overview.TotalTasks != 2 || got.Overview.CompletionRate != 50 || got.Overview.TotalProjects != 1 {
		t.Fatalf("overview = %+v", got.Overview)
	}
	if got.TimeTracking.TimeByProject["Site"] != 30 {
		t.Fatalf("time by project = %v", got.TimeTracking.TimeByProject)
	}
	if len(got.ProductivityTrends) != 7 {
		t.Fatalf("trend points = %d", len(got.ProductivityTrends))
	}
	if !got.GeneratedAt.Equal(now) {
		t.Fatalf("generated_at = %v", got.GeneratedAt)
	}

	empty, err := f.uc.Dashboard(ctx, domain.Actor{UserID: "stranger"})
	if err != nil {
		t.Fatalf("stranger dashboard: %v", err)
	}
	if empty.Overview.TotalTasks != 0 || empty.Overview.CompletionRate != 0 || empty.Overview.TotalProjects != 0 {
		t.Fatalf("stranger overview = %+v", empty.Overview)
	}
}

func TestProjectAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.uc.ProjectAnalytics(ctx, domain.Actor{UserID: "stranger"}, f.projectID); err != domain.ErrProjectNotFound {
		t.Fatalf("stranger err = %v", err)
	}
	got, err := f.uc.ProjectAnalytics(ctx, alice, f.projectID)
	if err != nil {
		t.Fatalf("project analytics: %v", err)
	}
	if got.Stats.TotalTasks != 2 || got.Stats.ProgressPercentage != 50 {
		t.Fatalf("stats = %+v", got.Stats)
	}
	if got.Estimate.RemainingTasks != 1 || got.Estimate.CompletedInWindow != 1 {
		t.Fatalf("estimate = %+v", got.Estimate)
	}
	if len(got.Assignees) != 1 || got.Assignees[0].UserID != "bob" {
		t.Fatalf("assignees = %+v", got.Assignees)
	}
}

func TestPerformance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, days := range []int{0, -1, 366} {
		if _, err := f.uc.Performance(ctx, alice, "alice", days); !domain.IsDomainError(err, domain.ErrCodeValidation) {
			t.Fatalf("days=%d err = %v", days, err)
		}
	}
	if _, err := f.uc.Performance(ctx, alice, "bob", 7); err != domain.ErrUserNotFound {
		t.Fatalf("peer lookup err = %v", err)
	}
	if _, err := f.uc.Performance(ctx, pm, "ghost", 7); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("unknown user err = %v", err)
	}

	got, err := f.uc.Performance(ctx, pm, "bob", 3)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if got.PeriodDays != 3 || len(got.Data) != 3 {
		t.Fatalf("period = %d, points = %d", got.PeriodDays, len(got.Data))
	}
	if last := got.Data[2]; last.TasksCompleted != 1 || last.TotalTimeSpent != 30 {
		t.Fatalf("today = %+v", last)
	}
}

func TestTimeTrackingForProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.uc.TimeTracking(ctx, domain.Actor{UserID: "stranger"}, f.projectID); err != domain.ErrProjectNotFound {
		t.Fatalf("stranger err = %v", err)
	}
	got, err := f.uc.TimeTracking(ctx, bob, f.projectID)
	if err != nil {
		t.Fatalf("time tracking: %v", err)
	}
	if got.TasksAnalyzed != 1 || got.AccuracyPercentage != 50 {
		t.Fatalf("time tracking = %+v", got)
	}
}

func TestPMDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.uc.PMDashboard(ctx, alice); err != domain.ErrForbidden {
		t.Fatalf("user err = %v", err)
	}
	got, err := f.uc.PMDashboard(ctx, pm)
	if err != nil {
		t.Fatalf("pm dashboard: %v", err)
	}
	if len(got.Projects) != 1 || got.Projects[0].Stats.TotalTasks != 2 {
		t.Fatalf("projects = %+v", got.Projects)
	}
	if got.Overview.TotalTasks != 2 {
		t.Fatalf("overview = %+v", got.Overview)
	}
	if got.Estimate.EstimatedDays == nil || *got.Estimate.EstimatedDays != 30 {
		t.Fatalf("estimate = %+v", got.Estimate)
	}
}

func TestProjectTeam(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.uc.ProjectTeam(ctx, alice, f.projectID); err != domain.ErrForbidden {
		t.Fatalf("user err = %v", err)
	}
	got, err := f.uc.ProjectTeam(ctx, pm, f.projectID)
	if err != nil {
		t.Fatalf("project team: %v", err)
	}
	ids := make([]string, len(got.Members))
	for i, m := range got.Members {
		ids[i] = m.UserID
	}
	if len(ids) != 3 || ids[0] != "alice" || ids[1] != "bob" || ids[2] != "pm" {
		t.Fatalf("members = %v", ids)
	}
	b := got.Members[1]
	if b.Username != "bobby" || b.Completed != 1 || b.ActualMinutes != 30 {
		t.Fatalf("bob = %+v", b)
	}
	if got.Members[2].Username != "pm@example.com" {
		t.Fatalf("pm name = %q", got.Members[2].Username)
	}
	if len(got.Teams) != 1 || got.Teams[0].Total != 1 {
		t.Fatalf("teams = %+v", got.Teams)
	}
}
