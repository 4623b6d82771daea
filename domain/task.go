package domain

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
	TaskBlocked    TaskStatus = "blocked"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted, TaskCancelled, TaskBlocked:
		return true
	}
	return false
}

// Closed reports whether the task no longer counts as outstanding work.
func (s TaskStatus) Closed() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// Priority ranks tasks and subtasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TimerSession is one contiguous running interval of a task timer.
type TimerSession struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// Comment is a note left on a subtask.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Subtask is a checklist item embedded in a task.
type Subtask struct {
	ID                string     `json:"id"`
	Text              string     `json:"text"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Priority          Priority   `json:"priority,omitempty"`
	AssignedUsers     []string   `json:"assigned_users,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
	Comments          []Comment  `json:"comments,omitempty"`
}

// Task represents a unit of work with an embedded time tracker.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	ProjectID   string     `json:"project_id,omitempty"`
	ProjectName string     `json:"project_name,omitempty"`

	Owners        []string `json:"owners"`
	AssignedUsers []string `json:"assigned_users"`
	Collaborators []string `json:"collaborators"`
	AssignedTeams []string `json:"assigned_teams"`
	Tags          []string `json:"tags,omitempty"`

	// Durations are minutes.
	EstimatedDuration *int `json:"estimated_duration,omitempty"`
	ActualDuration    *int `json:"actual_duration,omitempty"`

	DueDate   *time.Time `json:"due_date,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	IsTimerRunning      bool           `json:"is_timer_running"`
	TimerElapsedSeconds int64          `json:"timer_elapsed_seconds"`
	TimerStartedAt      *time.Time     `json:"timer_started_at"`
	TimerSessions       []TimerSession `json:"timer_sessions"`

	Todos []Subtask `json:"todos"`

	OverdueNotified bool `json:"-"`
	Version         int  `json:"version"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskCompleted
}

// IsOverdue reports whether the due date passed while the task is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now) && !t.Status.Closed()
}

// Membership returns the identities with direct access to the task.
func (t *Task) Membership() Membership {
	return Membership{
		Owners:        t.Owners,
		AssignedUsers: t.AssignedUsers,
		Collaborators: t.Collaborators,
		AssignedTeams: t.AssignedTeams,
	}
}

// Stakeholders returns the users that should hear about changes to the task.
func (t *Task) Stakeholders() []string {
	all := make([]string, 0, len(t.Owners)+len(t.AssignedUsers)+len(t.Collaborators))
	all = append(all, t.Owners...)
	all = append(all, t.AssignedUsers...)
	all = append(all, t.Collaborators...)
	return uniqueStrings(all)
}

// SetStatus moves the task to status and keeps completed_at consistent with it:
// it is stamped exactly when the task enters completed and cleared when it leaves.
// It reports whether the status actually changed.
func (t *Task) SetStatus(status TaskStatus, now time.Time) bool {
	if t.Status == status {
		return false
	}
	prev := t.Status
	t.Status = status
	switch {
	case status == TaskCompleted:
		stamp := now
		t.CompletedAt = &stamp
	case prev == TaskCompleted:
		t.CompletedAt = nil
	}
	return true
}

// Normalize fills defaults and dedupes membership sets.
func (t *Task) Normalize() {
	if t.Status == "" {
		t.Status = TaskTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.Owners = uniqueStrings(t.Owners)
	t.AssignedUsers = uniqueStrings(t.AssignedUsers)
	t.Collaborators = uniqueStrings(t.Collaborators)
	t.AssignedTeams = uniqueStrings(t.AssignedTeams)
	t.Tags = uniqueStrings(t.Tags)
}

// Validate checks user-controlled fields.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Title == "" {
		return Validationf("title is required")
	}
	if !t.Status.Valid() {
		return Validationf("unknown task status %q", t.Status)
	}
	if !t.Priority.Valid() {
		return Validationf("unknown task priority %q", t.Priority)
	}
	if t.EstimatedDuration != nil && *t.EstimatedDuration < 0 {
		return Validationf("estimated_duration must not be negative")
	}
	if t.ActualDuration != nil && *t.ActualDuration < 0 {
		return Validationf("actual_duration must not be negative")
	}
	for _, st := range t.Todos {
		if st.EstimatedDuration != nil && *st.EstimatedDuration < 0 {
			return Validationf("subtask estimated_duration must not be negative")
		}
	}
	return nil
}

// FindSubtask returns the index of the subtask with id, or -1.
func (t *Task) FindSubtask(id string) int {
	for i := range t.Todos {
		if t.Todos[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Owners = cloneStrings(t.Owners)
	c.AssignedUsers = cloneStrings(t.AssignedUsers)
	c.Collaborators = cloneStrings(t.Collaborators)
	c.AssignedTeams = cloneStrings(t.AssignedTeams)
	c.Tags = cloneStrings(t.Tags)
	c.EstimatedDuration = cloneInt(t.EstimatedDuration)
	c.ActualDuration = cloneInt(t.ActualDuration)
	c.DueDate = cloneTime(t.DueDate)
	c.StartTime = cloneTime(t.StartTime)
	c.EndTime = cloneTime(t.EndTime)
	c.TimerStartedAt = cloneTime(t.TimerStartedAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	if t.TimerSessions != nil {
		c.TimerSessions = append([]TimerSession(nil), t.TimerSessions...)
	}
	if t.Todos != nil {
		c.Todos = make([]Subtask, len(t.Todos))
		for i, st := range t.Todos {
			st.AssignedUsers = cloneStrings(st.AssignedUsers)
			st.CompletedAt = cloneTime(st.CompletedAt)
			st.DueDate = cloneTime(st.DueDate)
			st.EstimatedDuration = cloneInt(st.EstimatedDuration)
			if st.Comments != nil {
				st.Comments = append([]Comment(nil), st.Comments...)
			}
			c.Todos[i] = st
		}
	}
	return &c
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v...)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	t := *v
	return &t
}
