package domain

import (
	"math"
	"time"
)

// TimerAction names a timer transition; it doubles as the activity log action.
type TimerAction string

const (
	TimerStart  TimerAction = "timer_started"
	TimerPause  TimerAction = "timer_paused"
	TimerResume TimerAction = "timer_resumed"
	TimerStop   TimerAction = "timer_stopped"
)

// TimerStatus is the read-only view of a task timer at a given instant.
type TimerStatus struct {
	TaskID                string  `json:"task_id"`
	IsTimerRunning        bool    `json:"is_timer_running"`
	ElapsedSeconds        int64   `json:"elapsed_seconds"`
	CurrentSessionSeconds int64   `json:"current_session_seconds"`
	TotalCurrentSeconds   int64   `json:"total_current_seconds"`
	TotalCurrentMinutes   float64 `json:"total_current_minutes"`
}

// StartTimer begins a new session. A todo task moves to in_progress.
func (t *Task) StartTimer(now time.Time) error {
	if t.IsTimerRunning {
		return ErrTimerAlreadyRunning
	}
	t.beginSession(now)
	if t.Status == TaskTodo {
		t.SetStatus(TaskInProgress, now)
	}
	return nil
}

// ResumeTimer begins a new session without touching the task status.
func (t *Task) ResumeTimer(now time.Time) error {
	if t.IsTimerRunning {
		return ErrTimerAlreadyRunning
	}
	t.beginSession(now)
	return nil
}

// PauseTimer closes the running session and folds it into the elapsed total.
// It returns the closed session.
func (t *Task) PauseTimer(now time.Time) (TimerSession, error) {
	if !t.IsTimerRunning || t.TimerStartedAt == nil {
		return TimerSession{}, ErrTimerNotRunning
	}
	return t.closeSession(now), nil
}

// StopTimer finalizes time tracking: it closes a running session, derives
// actual_duration in whole minutes and optionally completes the task.
// The elapsed total is kept for display.
func (t *Task) StopTimer(now time.Time, completeTask bool) error {
	if !t.IsTimerRunning && t.TimerElapsedSeconds == 0 {
		return ErrTimerNeverStarted
	}
	if t.IsTimerRunning {
		t.closeSession(now)
	}

	minutes := ElapsedMinutes(t.TimerElapsedSeconds)
	t.ActualDuration = &minutes
	end := now
	t.EndTime = &end

	if completeTask {
		t.SetStatus(TaskCompleted, now)
	}
	return nil
}

// TimerStatusAt reports the timer state at now without mutating the task.
func (t *Task) TimerStatusAt(now time.Time) TimerStatus {
	var current int64
	if t.IsTimerRunning && t.TimerStartedAt != nil {
		current = secondsBetween(*t.TimerStartedAt, now)
	}
	total := t.TimerElapsedSeconds + current
	return TimerStatus{
		TaskID:                t.ID,
		IsTimerRunning:        t.IsTimerRunning,
		ElapsedSeconds:        t.TimerElapsedSeconds,
		CurrentSessionSeconds: current,
		TotalCurrentSeconds:   total,
		TotalCurrentMinutes:   Round2(float64(total) / 60),
	}
}

// ElapsedMinutes converts seconds to whole minutes, rounding half away from zero.
func ElapsedMinutes(seconds int64) int {
	return int(math.Round(float64(seconds) / 60))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (t *Task) beginSession(now time.Time) {
	started := now
	t.IsTimerRunning = true
	t.TimerStartedAt = &started
	if t.StartTime == nil {
		first := now
		t.StartTime = &first
	}
}

func (t *Task) closeSession(now time.Time) TimerSession {
	start := *t.TimerStartedAt
	session := TimerSession{
		Start:           start,
		End:             now,
		DurationSeconds: secondsBetween(start, now),
	}
	t.TimerSessions = append(t.TimerSessions, session)
	t.TimerElapsedSeconds += session.DurationSeconds
	t.IsTimerRunning = false
	t.TimerStartedAt = nil
	return session
}

// secondsBetween is whole seconds from start to end; clock skew never yields negatives.
func secondsBetween(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
