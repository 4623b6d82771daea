package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastygo/taskpulse/domain"
)

// The helpers below bundle the activity entry and notifications each task or
// project event produces. They return the joined emission failures.

// TaskEvent records a plain task action such as creation or a timer transition.
func (e *Emitter) TaskEvent(ctx context.Context, actor domain.Actor, action string, task *domain.Task, extra map[string]interface{}) error {
	return e.Record(ctx, domain.ActivityLogEntry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
		EntityName: task.Title,
		ProjectID:  task.ProjectID,
		Details:    details(extra),
	})
}

// TaskStatusChanged logs the transition and tells stakeholders. Moving into
// blocked sends a high priority task_blocked notification instead of the
// generic status change.
func (e *Emitter) TaskStatusChanged(ctx context.Context, actor domain.Actor, task *domain.Task, from, to domain.TaskStatus) error {
	recordErr := e.Record(ctx, domain.ActivityLogEntry{
		UserID:     actor.UserID,
		Action:     domain.ActionTaskStatusChanged,
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
		EntityName: task.Title,
		ProjectID:  task.ProjectID,
		Details:    details(map[string]string{"from": string(from), "to": string(to)}),
	})

	n := domain.Notification{
		Title:      "Task status changed",
		Message:    fmt.Sprintf("%q moved from %s to %s", task.Title, from, to),
		Type:       domain.NotifyStatusChange,
		Priority:   domain.NotifyMedium,
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
	}
	if to == domain.TaskBlocked {
		n.Title = "Task blocked"
		n.Message = fmt.Sprintf("%q is blocked", task.Title)
		n.Type = domain.NotifyTaskBlocked
		n.Priority = domain.NotifyHigh
	}
	return errors.Join(recordErr, e.Notify(ctx, task.Stakeholders(), actor.UserID, n))
}

// TaskOverdue fires once when a mutation observes a passed due date.
func (e *Emitter) TaskOverdue(ctx context.Context, actor domain.Actor, task *domain.Task) error {
	recordErr := e.Record(ctx, domain.ActivityLogEntry{
		UserID:     actor.UserID,
		Action:     domain.ActionTaskOverdue,
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
		EntityName: task.Title,
		ProjectID:  task.ProjectID,
		Details:    details(map[string]interface{}{"due_date": task.DueDate}),
	})
	n := domain.Notification{
		Title:      "Task overdue",
		Message:    fmt.Sprintf("%q is past its due date", task.Title),
		Type:       domain.NotifyTaskOverdue,
		Priority:   domain.NotifyHigh,
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
	}
	return errors.Join(recordErr, e.Notify(ctx, task.Stakeholders(), actor.UserID, n))
}

// TaskAssigned notifies newly assigned users.
func (e *Emitter) TaskAssigned(ctx context.Context, actor domain.Actor, task *domain.Task, assignees []string) error {
	if len(assignees) == 0 {
		return nil
	}
	recordErr := e.Record(ctx, domain.ActivityLogEntry{
		UserID:     actor.UserID,
		Action:     domain.ActionTaskAssigned,
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
		EntityName: task.Title,
		ProjectID:  task.ProjectID,
		Details:    details(map[string][]string{"assigned": assignees}),
	})
	n := domain.Notification{
		Title:      "New assignment",
		Message:    fmt.Sprintf("You were assigned to %q", task.Title),
		Type:       domain.NotifyAssignment,
		Priority:   notificationPriority(task.Priority),
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
	}
	return errors.Join(recordErr, e.Notify(ctx, assignees, actor.UserID, n))
}

// ProjectEvent records a plain project action.
func (e *Emitter) ProjectEvent(ctx context.Context, actor domain.Actor, action string, project *domain.Project) error {
	return e.Record(ctx, domain.ActivityLogEntry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: domain.EntityProject,
		EntityID:   project.ID,
		EntityName: project.Name,
		ProjectID:  project.ID,
	})
}

// ProjectStatusOverridden logs an override change and notifies collaborators.
func (e *Emitter) ProjectStatusOverridden(ctx context.Context, actor domain.Actor, project *domain.Project, previous *domain.ProjectStatus) error {
	from, to := "auto", "auto"
	if previous != nil {
		from = string(*previous)
	}
	if project.StatusOverride != nil {
		to = string(*project.StatusOverride)
	}
	recordErr := e.Record(ctx, domain.ActivityLogEntry{
		UserID:     actor.UserID,
		Action:     domain.ActionProjectStatusOverride,
		EntityType: domain.EntityProject,
		EntityID:   project.ID,
		EntityName: project.Name,
		ProjectID:  project.ID,
		Details: details(map[string]string{
			"from":             from,
			"to":               to,
			"effective_status": string(project.EffectiveStatus()),
		}),
	})
	n := domain.Notification{
		Title:      "Project status updated",
		Message:    fmt.Sprintf("%q is now %s", project.Name, project.EffectiveStatus()),
		Type:       domain.NotifyProjectStatus,
		Priority:   domain.NotifyMedium,
		EntityType: domain.EntityProject,
		EntityID:   project.ID,
	}
	return errors.Join(recordErr, e.Notify(ctx, project.Stakeholders(), actor.UserID, n))
}

func notificationPriority(p domain.Priority) domain.NotificationPriority {
	switch p {
	case domain.PriorityHigh, domain.PriorityUrgent:
		return domain.NotifyHigh
	case domain.PriorityLow:
		return domain.NotifyLow
	}
	return domain.NotifyMedium
}
