package analytics

import (
	"testing"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

var now = time.Date(2024, 7, 10, 15, 0, 0, 0, time.UTC)

func minutes(v int) *int { return &v }

func at(t time.Time) *time.Time { return &t }

func TestComputeOverviewCompletionRate(t *testing.T) {
	cases := []struct {
		name     string
		statuses []domain.TaskStatus
		want     float64
	}{
		{name: "no tasks", want: 0},
		{name: "one of four", statuses: []domain.TaskStatus{domain.TaskCompleted, domain.TaskTodo, domain.TaskTodo, domain.TaskInProgress}, want: 25},
		{name: "one of three", statuses: []domain.TaskStatus{domain.TaskCompleted, domain.TaskTodo, domain.TaskBlocked}, want: 33.33},
		{name: "all done", statuses: []domain.TaskStatus{domain.TaskCompleted, domain.TaskCompleted}, want: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tasks []domain.Task
			for _, s := range tc.statuses {
				tasks = append(tasks, domain.Task{Status: s})
			}
			got := ComputeOverview(Snapshot{Tasks: tasks, Now: now})
			if got.CompletionRate != tc.want {
				t.Fatalf("completion rate = %v, want %v", got.CompletionRate, tc.want)
			}
			if got.TotalTasks != len(tc.statuses) {
				t.Fatalf("total = %d", got.TotalTasks)
			}
		})
	}
}

func TestComputeOverviewCounts(t *testing.T) {
	override := domain.ProjectOnHold
	s := Snapshot{
		Now: now,
		Tasks: []domain.Task{
			{Status: domain.TaskInProgress, DueDate: at(now.Add(-time.Hour))},
			{Status: domain.TaskCompleted, DueDate: at(now.Add(-time.Hour))},
			{Status: domain.TaskTodo, DueDate: at(now.Add(time.Hour))},
		},
		Projects: []domain.Project{
			{AutoCalculatedStatus: domain.ProjectActive},
			{AutoCalculatedStatus: domain.ProjectActive, StatusOverride: &override},
			{AutoCalculatedStatus: domain.ProjectCompleted},
		},
	}
	got := ComputeOverview(s)
	if got.InProgressTasks != 1 || got.OverdueTasks != 1 {
		t.Fatalf("in progress/overdue = %d/%d", got.InProgressTasks, got.OverdueTasks)
	}
	if got.TotalProjects != 3 || got.ActiveProjects != 1 {
		t.Fatalf("projects = %d active of %d", got.ActiveProjects, got.TotalProjects)
	}
}

func TestComputeTrends(t *testing.T) {
	tasks := []domain.Task{
		{
			Status:            domain.TaskCompleted,
			CreatedAt:         time.Date(2024, 7, 9, 10, 0, 0, 0, time.UTC),
			CompletedAt:       at(time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)),
			EstimatedDuration: minutes(60),
			ActualDuration:    minutes(30),
		},
		{
			Status:         domain.TaskCompleted,
			CreatedAt:      time.Date(2024, 7, 5, 10, 0, 0, 0, time.UTC),
			CompletedAt:    at(time.Date(2024, 7, 10, 11, 0, 0, 0, time.UTC)),
			ActualDuration: minutes(45),
		},
		{
			Status:    domain.TaskInProgress,
			CreatedAt: time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC),
		},
	}

	got := ComputeTrends(tasks, now, 3)
	if len(got) != 3 {
		t.Fatalf("points = %d", len(got))
	}
	wantDates := []string{"2024-07-08", "2024-07-09", "2024-07-10"}
	for i, d := range wantDates {
		if got[i].Date != d {
			t.Fatalf("point %d date = %s, want %s", i, got[i].Date, d)
		}
	}
	if got[0] != (TrendPoint{Date: "2024-07-08"}) {
		t.Fatalf("empty day = %+v", got[0])
	}
	if got[1].TasksCreated != 1 || got[1].TasksCompleted != 0 {
		t.Fatalf("day 2 = %+v", got[1])
	}
	today := got[2]
	if today.TasksCompleted != 2 || today.TasksCreated != 1 || today.TotalTimeSpent != 75 {
		t.Fatalf("today = %+v", today)
	}
	if today.AccuracyScore != 0.5 || today.ProductivityScore != 1.4 {
		t.Fatalf("scores = %v/%v", today.AccuracyScore, today.ProductivityScore)
	}
}

func TestComputeTrendsBucketsByUTCDay(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	tasks := []domain.Task{{
		Status:      domain.TaskCompleted,
		CreatedAt:   time.Date(2024, 7, 10, 1, 0, 0, 0, plus3),
		CompletedAt: at(time.Date(2024, 7, 10, 1, 30, 0, 0, plus3)),
	}}
	got := ComputeTrends(tasks, now, 2)
	if got[0].Date != "2024-07-09" || got[0].TasksCompleted != 1 || got[0].TasksCreated != 1 {
		t.Fatalf("previous UTC day = %+v", got[0])
	}
	if got[1].TasksCompleted != 0 {
		t.Fatalf("today = %+v", got[1])
	}

	if empty := ComputeTrends(tasks, now, 0); len(empty) != 0 {
		t.Fatalf("zero days returned %d points", len(empty))
	}
}

func TestComputeTimeTracking(t *testing.T) {
	tasks := []domain.Task{
		{ProjectID: "p1", ProjectName: "Site", Priority: domain.PriorityHigh, EstimatedDuration: minutes(60), ActualDuration: minutes(90)},
		{Priority: domain.PriorityLow, EstimatedDuration: minutes(30), ActualDuration: minutes(30)},
		{Priority: domain.PriorityMedium, EstimatedDuration: minutes(0), ActualDuration: minutes(10)},
		{Priority: domain.PriorityUrgent, EstimatedDuration: minutes(45)},
	}
	got := ComputeTimeTracking(tasks)

	if got.TasksAnalyzed != 3 {
		t.Fatalf("analyzed = %d", got.TasksAnalyzed)
	}
	if got.TimeByProject["Site"] != 90 || got.TimeByProject[NoProject] != 40 {
		t.Fatalf("by project = %v", got.TimeByProject)
	}
	wantPriority := map[domain.Priority]int{
		domain.PriorityLow:    30,
		domain.PriorityMedium: 10,
		domain.PriorityHigh:   90,
		domain.PriorityUrgent: 0,
	}
	for p, want := range wantPriority {
		if got.TimeByPriority[p] != want {
			t.Fatalf("priority %s = %d, want %d", p, got.TimeByPriority[p], want)
		}
	}
	if got.TotalActualHours != 2.17 || got.TotalEstimatedHours != 1.5 {
		t.Fatalf("hours = %v actual, %v estimated", got.TotalActualHours, got.TotalEstimatedHours)
	}
	if got.AccuracyPercentage != 75 {
		t.Fatalf("accuracy = %v", got.AccuracyPercentage)
	}
}

func TestComputeTimeTrackingAccuracyBounds(t *testing.T) {
	cases := []struct {
		name  string
		tasks []domain.Task
		want  float64
	}{
		{name: "no data", want: 0},
		{name: "no estimates", tasks: []domain.Task{{ActualDuration: minutes(20)}}, want: 0},
		{name: "exact", tasks: []domain.Task{{EstimatedDuration: minutes(20), ActualDuration: minutes(20)}}, want: 100},
		{name: "wildly over", tasks: []domain.Task{{EstimatedDuration: minutes(10), ActualDuration: minutes(100)}}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeTimeTracking(tc.tasks).AccuracyPercentage; got != tc.want {
				t.Fatalf("accuracy = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestComputeTeamBreakdown(t *testing.T) {
	s := Snapshot{
		Now: now,
		Teams: []domain.Team{
			{ID: "b", Name: "Beta", MemberIDs: []string{"u2"}},
			{ID: "a", Name: "Alpha"},
		},
		Tasks: []domain.Task{
			{Status: domain.TaskTodo, AssignedTeams: []string{"a"}},
			{Status: domain.TaskCompleted, AssignedUsers: []string{"u2"}},
			{Status: domain.TaskInProgress, AssignedUsers: []string{"u2"}, DueDate: at(now.Add(-time.Hour))},
			{Status: domain.TaskTodo, AssignedUsers: []string{"u9"}},
		},
	}
	got := ComputeTeamBreakdown(s)
	if len(got) != 2 || got[0].TeamName != "Alpha" || got[1].TeamName != "Beta" {
		t.Fatalf("teams = %+v", got)
	}
	if got[0].Breakdown != (Breakdown{Total: 1, Todo: 1}) {
		t.Fatalf("alpha = %+v", got[0].Breakdown)
	}
	if got[1].Breakdown != (Breakdown{Total: 2, Completed: 1, InProgress: 1, Overdue: 1}) {
		t.Fatalf("beta = %+v", got[1].Breakdown)
	}
}

func TestComputeAssigneeBreakdown(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.TaskTodo, AssignedUsers: []string{"zoe", "al"}},
		{Status: domain.TaskBlocked, AssignedUsers: []string{"al"}},
	}
	got := ComputeAssigneeBreakdown(tasks, now)
	if len(got) != 2 || got[0].UserID != "al" || got[1].UserID != "zoe" {
		t.Fatalf("assignees = %+v", got)
	}
	if got[0].Breakdown != (Breakdown{Total: 2, Todo: 1}) {
		t.Fatalf("al = %+v", got[0].Breakdown)
	}
}

func TestEstimateCompletion(t *testing.T) {
	day := 24 * time.Hour
	tasks := []domain.Task{
		{Status: domain.TaskCompleted, CompletedAt: at(now.Add(-day))},
		{Status: domain.TaskCompleted, CompletedAt: at(now.Add(-10 * day))},
		{Status: domain.TaskCompleted, CompletedAt: at(now.Add(-40 * day))},
		{Status: domain.TaskTodo},
		{Status: domain.TaskInProgress},
		{Status: domain.TaskBlocked},
		{Status: domain.TaskCancelled},
	}
	got := EstimateCompletion(tasks, now, 30)
	if got.RemainingTasks != 3 || got.CompletedInWindow != 2 {
		t.Fatalf("remaining/completed = %d/%d", got.RemainingTasks, got.CompletedInWindow)
	}
	if got.RatePerDay != 0.07 {
		t.Fatalf("rate = %v", got.RatePerDay)
	}
	if got.EstimatedDays == nil || *got.EstimatedDays != 45 {
		t.Fatalf("days = %v", got.EstimatedDays)
	}
	if !got.EstimatedDate.Equal(now.Add(45 * day)) {
		t.Fatalf("date = %v", got.EstimatedDate)
	}
}

func TestEstimateCompletionEdges(t *testing.T) {
	stalled := EstimateCompletion([]domain.Task{{Status: domain.TaskTodo}}, now, 30)
	if stalled.EstimatedDays != nil || stalled.EstimatedDate != nil {
		t.Fatalf("no completions should give no estimate: %+v", stalled)
	}

	finished := EstimateCompletion([]domain.Task{{Status: domain.TaskCompleted, CompletedAt: at(now.Add(-time.Hour))}}, now, 30)
	if finished.EstimatedDays == nil || *finished.EstimatedDays != 0 {
		t.Fatalf("nothing remaining = %v", finished.EstimatedDays)
	}

	if got := EstimateCompletion(nil, now, 0); got.HistoryDays != 30 {
		t.Fatalf("default history = %d", got.HistoryDays)
	}
}

func TestComputeProjectStats(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.TaskCompleted, EstimatedDuration: minutes(60), ActualDuration: minutes(30)},
		{Status: domain.TaskInProgress, EstimatedDuration: minutes(40)},
		{Status: domain.TaskTodo},
	}
	got := ComputeProjectStats(tasks)
	if got.TotalTasks != 3 || got.CompletedTasks != 1 || got.InProgressTasks != 1 || got.TodoTasks != 1 {
		t.Fatalf("counts = %+v", got)
	}
	if got.ProgressPercentage != 33.33 {
		t.Fatalf("progress = %v", got.ProgressPercentage)
	}
	if got.TotalEstimatedTime != 100 || got.TotalActualTime != 30 {
		t.Fatalf("time = %d/%d", got.TotalEstimatedTime, got.TotalActualTime)
	}
	if got.TimeAccuracy != 30 {
		t.Fatalf("accuracy = %v", got.TimeAccuracy)
	}
}

func TestTimeByProjectSeparatesSharedNames(t *testing.T) {
	tasks := []domain.Task{
		{ProjectID: "p1", ProjectName: "Site", Priority: domain.PriorityLow, ActualDuration: minutes(20)},
		{ProjectID: "p2", ProjectName: "Site", Priority: domain.PriorityLow, ActualDuration: minutes(50)},
		{ProjectID: "p1", ProjectName: "Site", Priority: domain.PriorityLow, ActualDuration: minutes(5)},
		{ProjectID: "p3", ProjectName: "Docs", Priority: domain.PriorityLow, ActualDuration: minutes(15)},
	}
	got := ComputeTimeTracking(tasks).TimeByProject

	want := map[string]int{"Site (p1)": 25, "Site (p2)": 50, "Docs": 15}
	if len(got) != len(want) {
		t.Fatalf("buckets = %v, want %v", got, want)
	}
	for label, total := range want {
		if got[label] != total {
			t.Fatalf("%s = %d, want %d (all %v)", label, got[label], total, got)
		}
	}
}
