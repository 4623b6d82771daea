package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

// NoProject buckets time tracked on tasks outside any project.
const NoProject = "No Project"

// Snapshot is the input of every computation. Results depend only on it.
type Snapshot struct {
	Tasks    []domain.Task
	Projects []domain.Project
	Teams    []domain.Team
	Now      time.Time
}

type Overview struct {
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	OverdueTasks    int     `json:"overdue_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
	TotalProjects   int     `json:"total_projects"`
	ActiveProjects  int     `json:"active_projects"`
}

// TrendPoint summarizes one UTC calendar day.
type TrendPoint struct {
	Date              string  `json:"date"`
	TasksCompleted    int     `json:"tasks_completed"`
	TasksCreated      int     `json:"tasks_created"`
	TotalTimeSpent    int     `json:"total_time_spent"`
	ProductivityScore float64 `json:"productivity_score"`
	AccuracyScore     float64 `json:"accuracy_score"`
}

type TimeTracking struct {
	TimeByProject       map[string]int          `json:"time_by_project"`
	TimeByPriority      map[domain.Priority]int `json:"time_by_priority"`
	TotalEstimatedHours float64                 `json:"total_estimated_hours"`
	TotalActualHours    float64                 `json:"total_actual_hours"`
	AccuracyPercentage  float64                 `json:"accuracy_percentage"`
	TasksAnalyzed       int                     `json:"tasks_analyzed"`
}

// Breakdown counts tasks by state. Blocked and cancelled tasks only count toward Total.
type Breakdown struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Todo       int `json:"todo"`
	Overdue    int `json:"overdue"`
}

type TeamBreakdown struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Breakdown
}

type AssigneeBreakdown struct {
	UserID string `json:"user_id"`
	Breakdown
}

// CompletionEstimate is a linear projection of when open work will be done.
// EstimatedDays is nil when nothing was completed in the history window.
type CompletionEstimate struct {
	RemainingTasks    int        `json:"remaining_tasks"`
	CompletedInWindow int        `json:"completed_in_window"`
	HistoryDays       int        `json:"history_days"`
	RatePerDay        float64    `json:"rate_per_day"`
	EstimatedDays     *float64   `json:"estimated_days"`
	EstimatedDate     *time.Time `json:"estimated_completion_date"`
}

// ProjectStats describes the tasks of a single project.
type ProjectStats struct {
	TotalTasks         int     `json:"total_tasks"`
	CompletedTasks     int     `json:"completed_tasks"`
	InProgressTasks    int     `json:"in_progress_tasks"`
	TodoTasks          int     `json:"todo_tasks"`
	ProgressPercentage float64 `json:"progress_percentage"`
	TotalEstimatedTime int     `json:"total_estimated_time"`
	TotalActualTime    int     `json:"total_actual_time"`
	TimeAccuracy       float64 `json:"time_accuracy"`
}

func ComputeOverview(s Snapshot) Overview {
	var o Overview
	for i := range s.Tasks {
		t := &s.Tasks[i]
		o.TotalTasks++
		switch t.Status {
		case domain.TaskCompleted:
			o.CompletedTasks++
		case domain.TaskInProgress:
			o.InProgressTasks++
		}
		if t.IsOverdue(s.Now) {
			o.OverdueTasks++
		}
	}
	o.CompletionRate = domain.ProgressPercentage(o.CompletedTasks, o.TotalTasks)

	for i := range s.Projects {
		o.TotalProjects++
		if s.Projects[i].EffectiveStatus() == domain.ProjectActive {
			o.ActiveProjects++
		}
	}
	return o
}

// ComputeTrends returns one point per UTC day for the last days days, today
// included, ordered oldest to newest.
func ComputeTrends(tasks []domain.Task, now time.Time, days int) []TrendPoint {
	if days <= 0 {
		return []TrendPoint{}
	}
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(days - 1))

	points := make([]TrendPoint, days)
	accuracy := make([][]float64, days)
	for i := range points {
		points[i].Date = first.AddDate(0, 0, i).Format("2006-01-02")
	}

	for i := range tasks {
		t := &tasks[i]
		if idx, ok := dayIndex(first, days, t.CreatedAt); ok {
			points[idx].TasksCreated++
		}
		if !t.IsCompleted() || t.CompletedAt == nil {
			continue
		}
		idx, ok := dayIndex(first, days, *t.CompletedAt)
		if !ok {
			continue
		}
		points[idx].TasksCompleted++
		if t.ActualDuration != nil {
			points[idx].TotalTimeSpent += *t.ActualDuration
		}
		if score, ok := taskAccuracy(t); ok {
			accuracy[idx] = append(accuracy[idx], score)
		}
	}

	for i := range points {
		acc := mean(accuracy[i])
		points[i].AccuracyScore = domain.Round2(acc)
		points[i].ProductivityScore = domain.Round2(float64(points[i].TasksCompleted)*0.6 + acc*0.4)
	}
	return points
}

// ComputeTimeTracking aggregates tracked minutes over tasks with an actual
// duration. Accuracy is 100 minus the mean relative estimation error, clamped to [0, 100].
func ComputeTimeTracking(tasks []domain.Task) TimeTracking {
	tt := TimeTracking{
		TimeByProject:  map[string]int{},
		TimeByPriority: map[domain.Priority]int{},
	}
	for _, p := range domain.Priorities {
		tt.TimeByPriority[p] = 0
	}

	labels := newProjectLabels(tasks)
	var estimated, actual int
	var errorsPct []float64
	for i := range tasks {
		t := &tasks[i]
		if t.ActualDuration == nil {
			continue
		}
		tt.TasksAnalyzed++
		a := *t.ActualDuration
		actual += a

		tt.TimeByProject[labels.of(t)] += a
		tt.TimeByPriority[t.Priority] += a

		if t.EstimatedDuration == nil {
			continue
		}
		e := *t.EstimatedDuration
		estimated += e
		if e > 0 {
			errorsPct = append(errorsPct, math.Abs(float64(a-e))/float64(e)*100)
		}
	}

	tt.TotalEstimatedHours = domain.Round2(float64(estimated) / 60)
	tt.TotalActualHours = domain.Round2(float64(actual) / 60)
	if len(errorsPct) > 0 {
		tt.AccuracyPercentage = domain.Round2(clamp(100-mean(errorsPct), 0, 100))
	}
	return tt
}

// projectLabels names time buckets by project name. A name shared by several
// projects is suffixed with the project ID in every bucket it labels.
type projectLabels map[string]bool

func newProjectLabels(tasks []domain.Task) projectLabels {
	owner := map[string]string{}
	shared := projectLabels{}
	for i := range tasks {
		t := &tasks[i]
		if t.ProjectID == "" || t.ProjectName == "" {
			continue
		}
		if id, ok := owner[t.ProjectName]; !ok {
			owner[t.ProjectName] = t.ProjectID
		} else if id != t.ProjectID {
			shared[t.ProjectName] = true
		}
	}
	return shared
}

func (l projectLabels) of(t *domain.Task) string {
	if t.ProjectID == "" || t.ProjectName == "" {
		return NoProject
	}
	if l[t.ProjectName] {
		return fmt.Sprintf("%s (%s)", t.ProjectName, t.ProjectID)
	}
	return t.ProjectName
}

// ComputeTeamBreakdown counts, per team, the tasks assigned to the team or to
// one of its members. Teams are ordered by name.
func ComputeTeamBreakdown(s Snapshot) []TeamBreakdown {
	out := make([]TeamBreakdown, 0, len(s.Teams))
	for ti := range s.Teams {
		team := &s.Teams[ti]
		row := TeamBreakdown{TeamID: team.ID, TeamName: team.Name}
		for i := range s.Tasks {
			t := &s.Tasks[i]
			if !taskBelongsToTeam(t, team) {
				continue
			}
			row.add(t, s.Now)
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// ComputeAssigneeBreakdown counts tasks per assigned user, ordered by user ID.
func ComputeAssigneeBreakdown(tasks []domain.Task, now time.Time) []AssigneeBreakdown {
	rows := map[string]*AssigneeBreakdown{}
	for i := range tasks {
		t := &tasks[i]
		for _, userID := range t.AssignedUsers {
			row, ok := rows[userID]
			if !ok {
				row = &AssigneeBreakdown{UserID: userID}
				rows[userID] = row
			}
			row.add(t, now)
		}
	}
	out := make([]AssigneeBreakdown, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// EstimateCompletion projects remaining / (completed in the last historyDays / historyDays).
func EstimateCompletion(tasks []domain.Task, now time.Time, historyDays int) CompletionEstimate {
	if historyDays <= 0 {
		historyDays = 30
	}
	est := CompletionEstimate{HistoryDays: historyDays}
	windowStart := now.Add(-time.Duration(historyDays) * 24 * time.Hour)

	for i := range tasks {
		t := &tasks[i]
		if !t.Status.Closed() {
			est.RemainingTasks++
		}
		if t.IsCompleted() && t.CompletedAt != nil &&
			t.CompletedAt.After(windowStart) && !t.CompletedAt.After(now) {
			est.CompletedInWindow++
		}
	}

	est.RatePerDay = domain.Round2(float64(est.CompletedInWindow) / float64(historyDays))
	if est.RemainingTasks == 0 {
		zero := 0.0
		est.EstimatedDays = &zero
		done := now
		est.EstimatedDate = &done
		return est
	}
	if est.CompletedInWindow == 0 {
		return est
	}
	days := float64(est.RemainingTasks) * float64(historyDays) / float64(est.CompletedInWindow)
	rounded := domain.Round2(days)
	est.EstimatedDays = &rounded
	date := now.Add(time.Duration(days * float64(24*time.Hour)))
	est.EstimatedDate = &date
	return est
}

// ComputeProjectStats summarizes the tasks of one project. TimeAccuracy
// compares the summed estimate with the summed actual time.
func ComputeProjectStats(tasks []domain.Task) ProjectStats {
	var ps ProjectStats
	for i := range tasks {
		t := &tasks[i]
		ps.TotalTasks++
		switch t.Status {
		case domain.TaskCompleted:
			ps.CompletedTasks++
		case domain.TaskInProgress:
			ps.InProgressTasks++
		}
		if t.EstimatedDuration != nil {
			ps.TotalEstimatedTime += *t.EstimatedDuration
		}
		if t.ActualDuration != nil {
			ps.TotalActualTime += *t.ActualDuration
		}
	}
	ps.TodoTasks = ps.TotalTasks - ps.CompletedTasks - ps.InProgressTasks
	ps.ProgressPercentage = domain.ProgressPercentage(ps.CompletedTasks, ps.TotalTasks)

	e, a := float64(ps.TotalEstimatedTime), float64(ps.TotalActualTime)
	ps.TimeAccuracy = domain.Round2((1 - math.Abs(e-a)/math.Max(math.Max(e, a), 1)) * 100)
	return ps
}

func (b *Breakdown) add(t *domain.Task, now time.Time) {
	b.Total++
	switch t.Status {
	case domain.TaskCompleted:
		b.Completed++
	case domain.TaskInProgress:
		b.InProgress++
	case domain.TaskTodo:
		b.Todo++
	}
	if t.IsOverdue(now) {
		b.Overdue++
	}
}

func taskBelongsToTeam(t *domain.Task, team *domain.Team) bool {
	for _, id := range t.AssignedTeams {
		if id == team.ID {
			return true
		}
	}
	for _, userID := range t.AssignedUsers {
		if team.HasMember(userID) {
			return true
		}
	}
	return false
}

// taskAccuracy scores one task as 1 - |e-a| / max(e, a).
func taskAccuracy(t *domain.Task) (float64, bool) {
	if t.EstimatedDuration == nil || t.ActualDuration == nil {
		return 0, false
	}
	e, a := float64(*t.EstimatedDuration), float64(*t.ActualDuration)
	if e <= 0 || a <= 0 {
		return 0, false
	}
	return 1 - math.Abs(e-a)/math.Max(e, a), true
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func dayIndex(first time.Time, days int, t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	d := startOfDay(t)
	if d.Before(first) {
		return 0, false
	}
	idx := int(d.Sub(first) / (24 * time.Hour))
	if idx >= days {
		return 0, false
	}
	return idx, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
