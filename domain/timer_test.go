package domain

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestStartTimerMovesTodoToInProgress(t *testing.T) {
	task := &Task{Status: TaskTodo}
	if err := task.StartTimer(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !task.IsTimerRunning || task.TimerStartedAt == nil || !task.TimerStartedAt.Equal(t0) {
		t.Fatalf("timer not running from t0: %+v", task)
	}
	if task.Status != TaskInProgress {
		t.Fatalf("status = %s, want in_progress", task.Status)
	}
	if task.StartTime == nil || !task.StartTime.Equal(t0) {
		t.Fatalf("start_time = %v, want %v", task.StartTime, t0)
	}
}

func TestStartTimerKeepsOtherStatuses(t *testing.T) {
	task := &Task{Status: TaskBlocked}
	if err := task.StartTimer(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if task.Status != TaskBlocked {
		t.Fatalf("status = %s, want blocked", task.Status)
	}
}

func TestStartTimerTwiceFails(t *testing.T) {
	task := &Task{Status: TaskTodo}
	if err := task.StartTimer(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	err := task.StartTimer(t0.Add(time.Second))
	if !IsDomainError(err, ErrCodeInvalidState) {
		t.Fatalf("second start err = %v, want INVALID_STATE", err)
	}
	if err := task.ResumeTimer(t0.Add(time.Second)); err != ErrTimerAlreadyRunning {
		t.Fatalf("resume while running err = %v", err)
	}
}

func TestPauseResumeAccumulates(t *testing.T) {
	task := &Task{Status: TaskTodo}
	_ = task.StartTimer(t0)
	session, err := task.PauseTimer(t0.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if session.DurationSeconds != 30 {
		t.Fatalf("session = %d, want 30", session.DurationSeconds)
	}
	if err := task.ResumeTimer(t0.Add(100 * time.Second)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, err := task.PauseTimer(t0.Add(145 * time.Second)); err != nil {
		t.Fatalf("second pause: %v", err)
	}
	if task.TimerElapsedSeconds != 75 {
		t.Fatalf("elapsed = %d, want 75", task.TimerElapsedSeconds)
	}
	if len(task.TimerSessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(task.TimerSessions))
	}
	if task.StartTime == nil || !task.StartTime.Equal(t0) {
		t.Fatalf("start_time moved: %v", task.StartTime)
	}
}

func TestPauseWithoutRunningTimer(t *testing.T) {
	task := &Task{Status: TaskInProgress}
	if _, err := task.PauseTimer(t0); err != ErrTimerNotRunning {
		t.Fatalf("err = %v, want ErrTimerNotRunning", err)
	}
}

func TestStopTimer(t *testing.T) {
	cases := []struct {
		name        string
		elapsed     time.Duration
		complete    bool
		wantMinutes int
		wantStatus  TaskStatus
	}{
		{name: "rounds down", elapsed: 65 * time.Second, complete: true, wantMinutes: 1, wantStatus: TaskCompleted},
		{name: "half rounds up", elapsed: 90 * time.Second, wantMinutes: 2, wantStatus: TaskInProgress},
		{name: "under half a minute", elapsed: 29 * time.Second, wantMinutes: 0, wantStatus: TaskInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := &Task{Status: TaskTodo}
			_ = task.StartTimer(t0)
			stop := t0.Add(tc.elapsed)
			if err := task.StopTimer(stop, tc.complete); err != nil {
				t.Fatalf("stop: %v", err)
			}
			if task.IsTimerRunning || task.TimerStartedAt != nil {
				t.Fatalf("timer still running")
			}
			if task.ActualDuration == nil || *task.ActualDuration != tc.wantMinutes {
				t.Fatalf("actual_duration = %v, want %d", task.ActualDuration, tc.wantMinutes)
			}
			if task.Status != tc.wantStatus {
				t.Fatalf("status = %s, want %s", task.Status, tc.wantStatus)
			}
			if task.EndTime == nil || !task.EndTime.Equal(stop) {
				t.Fatalf("end_time = %v, want %v", task.EndTime, stop)
			}
			if tc.complete && (task.CompletedAt == nil || !task.CompletedAt.Equal(stop)) {
				t.Fatalf("completed_at = %v, want %v", task.CompletedAt, stop)
			}
		})
	}
}

func TestStopPausedTimerUsesAccumulatedTime(t *testing.T) {
	task := &Task{Status: TaskTodo}
	_ = task.StartTimer(t0)
	_, _ = task.PauseTimer(t0.Add(150 * time.Second))
	if err := task.StopTimer(t0.Add(time.Hour), false); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if *task.ActualDuration != 3 {
		t.Fatalf("actual_duration = %d, want 3", *task.ActualDuration)
	}
	if task.TimerElapsedSeconds != 150 {
		t.Fatalf("elapsed = %d, want 150", task.TimerElapsedSeconds)
	}
}

func TestStopNeverStarted(t *testing.T) {
	task := &Task{Status: TaskTodo}
	if err := task.StopTimer(t0, true); err != ErrTimerNeverStarted {
		t.Fatalf("err = %v, want ErrTimerNeverStarted", err)
	}
	if task.Status != TaskTodo || task.ActualDuration != nil {
		t.Fatalf("task mutated: %+v", task)
	}
}

func TestTimerStatusAtDoesNotMutate(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskTodo}
	_ = task.StartTimer(t0)
	_, _ = task.PauseTimer(t0.Add(60 * time.Second))
	_ = task.ResumeTimer(t0.Add(120 * time.Second))

	status := task.TimerStatusAt(t0.Add(150 * time.Second))
	if !status.IsTimerRunning {
		t.Fatalf("status not running")
	}
	if status.ElapsedSeconds != 60 || status.CurrentSessionSeconds != 30 || status.TotalCurrentSeconds != 90 {
		t.Fatalf("status = %+v", status)
	}
	if status.TotalCurrentMinutes != 1.5 {
		t.Fatalf("minutes = %v, want 1.5", status.TotalCurrentMinutes)
	}
	if task.TimerElapsedSeconds != 60 || !task.IsTimerRunning {
		t.Fatalf("status read mutated task: %+v", task)
	}
}

func TestClockSkewNeverNegative(t *testing.T) {
	task := &Task{Status: TaskTodo}
	_ = task.StartTimer(t0)
	session, err := task.PauseTimer(t0.Add(-5 * time.Second))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if session.DurationSeconds != 0 || task.TimerElapsedSeconds != 0 {
		t.Fatalf("negative duration leaked: %+v", session)
	}
}
