package domain

import (
	"testing"
	"time"
)

func TestSetStatusKeepsCompletedAtConsistent(t *testing.T) {
	task := &Task{Status: TaskInProgress}

	if !task.SetStatus(TaskCompleted, t0) {
		t.Fatalf("expected change")
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(t0) {
		t.Fatalf("completed_at = %v", task.CompletedAt)
	}
	if task.SetStatus(TaskCompleted, t0.Add(time.Hour)) {
		t.Fatalf("same status reported a change")
	}
	if !task.CompletedAt.Equal(t0) {
		t.Fatalf("completed_at restamped")
	}

	task.SetStatus(TaskInProgress, t0.Add(2*time.Hour))
	if task.CompletedAt != nil {
		t.Fatalf("completed_at kept after leaving completed")
	}
	task.SetStatus(TaskBlocked, t0.Add(3*time.Hour))
	if task.CompletedAt != nil {
		t.Fatalf("completed_at set outside completed")
	}
}

func TestIsOverdue(t *testing.T) {
	due := t0
	cases := []struct {
		name   string
		task   Task
		now    time.Time
		expect bool
	}{
		{name: "no due date", task: Task{Status: TaskTodo}, now: t0, expect: false},
		{name: "past due open", task: Task{Status: TaskInProgress, DueDate: &due}, now: t0.Add(time.Minute), expect: true},
		{name: "past due completed", task: Task{Status: TaskCompleted, DueDate: &due}, now: t0.Add(time.Minute), expect: false},
		{name: "past due cancelled", task: Task{Status: TaskCancelled, DueDate: &due}, now: t0.Add(time.Minute), expect: false},
		{name: "not yet due", task: Task{Status: TaskTodo, DueDate: &due}, now: t0.Add(-time.Minute), expect: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.task.IsOverdue(tc.now); got != tc.expect {
				t.Fatalf("IsOverdue = %v, want %v", got, tc.expect)
			}
		})
	}
}

func TestValidateTask(t *testing.T) {
	neg := -1
	cases := []struct {
		name string
		task Task
		ok   bool
	}{
		{name: "valid", task: Task{Title: "a", Status: TaskTodo, Priority: PriorityLow}, ok: true},
		{name: "missing title", task: Task{Status: TaskTodo, Priority: PriorityLow}},
		{name: "unknown status", task: Task{Title: "a", Status: "done", Priority: PriorityLow}},
		{name: "unknown priority", task: Task{Title: "a", Status: TaskTodo, Priority: "p0"}},
		{name: "negative estimate", task: Task{Title: "a", Status: TaskTodo, Priority: PriorityLow, EstimatedDuration: &neg}},
		{name: "negative actual", task: Task{Title: "a", Status: TaskTodo, Priority: PriorityLow, ActualDuration: &neg}},
		{name: "negative subtask estimate", task: Task{Title: "a", Status: TaskTodo, Priority: PriorityLow, Todos: []Subtask{{EstimatedDuration: &neg}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !IsDomainError(err, ErrCodeValidation) {
				t.Fatalf("err = %v, want VALIDATION", err)
			}
		})
	}
}

func TestNormalizeDedupesMembership(t *testing.T) {
	task := &Task{
		AssignedUsers: []string{"u1", "u2", "u1", ""},
		Tags:          []string{"x", "x"},
	}
	task.Normalize()
	if task.Status != TaskTodo || task.Priority != PriorityMedium {
		t.Fatalf("defaults not applied: %s %s", task.Status, task.Priority)
	}
	if len(task.AssignedUsers) != 2 || task.AssignedUsers[0] != "u1" || task.AssignedUsers[1] != "u2" {
		t.Fatalf("assigned = %v", task.AssignedUsers)
	}
	if len(task.Tags) != 1 {
		t.Fatalf("tags = %v", task.Tags)
	}
}

func TestCloneIsDeep(t *testing.T) {
	est := 10
	task := &Task{
		AssignedUsers:     []string{"u1"},
		EstimatedDuration: &est,
		Todos:             []Subtask{{ID: "s1", Comments: []Comment{{ID: "c1"}}}},
	}
	c := task.Clone()
	c.AssignedUsers[0] = "u2"
	*c.EstimatedDuration = 20
	c.Todos[0].Comments[0].Text = "changed"
	c.Todos[0].Completed = true

	if task.AssignedUsers[0] != "u1" || *task.EstimatedDuration != 10 {
		t.Fatalf("clone shares scalars or slices")
	}
	if task.Todos[0].Completed || task.Todos[0].Comments[0].Text != "" {
		t.Fatalf("clone shares subtasks")
	}
}

func TestStakeholders(t *testing.T) {
	task := &Task{
		Owners:        []string{"o"},
		AssignedUsers: []string{"a", "o"},
		Collaborators: []string{"c"},
	}
	got := task.Stakeholders()
	want := []string{"o", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("stakeholders = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stakeholders = %v, want %v", got, want)
		}
	}
}
