package domain

import (
	"encoding/json"
	"time"
)

// Entity types referenced by activity entries and notifications.
const (
	EntityTask    = "task"
	EntityProject = "project"
)

// Activity actions recorded by the emitter.
const (
	ActionTaskCreated           = "task_created"
	ActionTaskUpdated           = "task_updated"
	ActionTaskDeleted           = "task_deleted"
	ActionTaskStatusChanged     = "task_status_changed"
	ActionTaskAssigned          = "task_assigned"
	ActionTaskOverdue           = "task_overdue"
	ActionProjectCreated        = "project_created"
	ActionProjectStatusOverride = "project_status_override"
)

// ActivityLogEntry is an immutable audit record.
type ActivityLogEntry struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name"`
	ProjectID  string          `json:"project_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NotificationType classifies notifications for clients.
type NotificationType string

const (
	NotifyStatusChange  NotificationType = "status_change"
	NotifyTaskBlocked   NotificationType = "task_blocked"
	NotifyTaskOverdue   NotificationType = "task_overdue"
	NotifyAssignment    NotificationType = "assignment"
	NotifyProjectStatus NotificationType = "project_status"
)

// NotificationPriority mirrors task priorities for notifications.
type NotificationPriority string

const (
	NotifyLow    NotificationPriority = "low"
	NotifyMedium NotificationPriority = "medium"
	NotifyHigh   NotificationPriority = "high"
)

// Notification is a message for a single recipient. Read only ever goes false -> true.
type Notification struct {
	ID         string               `json:"id"`
	UserID     string               `json:"user_id"`
	Title      string               `json:"title"`
	Message    string               `json:"message"`
	Type       NotificationType     `json:"type"`
	Priority   NotificationPriority `json:"priority"`
	Read       bool                 `json:"read"`
	EntityType string               `json:"entity_type"`
	EntityID   string               `json:"entity_id"`
	CreatedAt  time.Time            `json:"created_at"`
}

// MarkRead flips the notification to read. It reports whether anything changed.
func (n *Notification) MarkRead() bool {
	if n.Read {
		return false
	}
	n.Read = true
	return true
}
