package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

func TestActivityAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(NewStore())
	entry := &domain.ActivityLogEntry{ID: "a1", UserID: "u1", Action: "task_created"}

	for i := 0; i < 2; i++ {
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, _ := repo.List(ctx, repository.ActivityFilter{})
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
}

func TestActivityListScope(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(NewStore())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.ActivityLogEntry{
		{ID: "1", UserID: "u1", Timestamp: base},
		{ID: "2", UserID: "u2", ProjectID: "p1", Timestamp: base.Add(time.Minute)},
		{ID: "3", UserID: "u2", ProjectID: "p2", Timestamp: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		_ = repo.Append(ctx, &entries[i])
	}

	got, _ := repo.List(ctx, repository.ActivityFilter{UserID: "u1", ProjectIDs: []string{"p1"}})
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "1" {
		t.Fatalf("scoped feed = %+v", got)
	}

	got, _ = repo.List(ctx, repository.ActivityFilter{ProjectID: "p2"})
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("project feed = %+v", got)
	}
}

func TestNotificationMarkReadOnlyForRecipient(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(NewStore())
	n := &domain.Notification{ID: "n1", UserID: "u1", Title: "hello"}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.MarkRead(ctx, "u2", "n1"); err != domain.ErrNotificationNotFound {
		t.Fatalf("foreign mark err = %v", err)
	}
	read, err := repo.MarkRead(ctx, "u1", "n1")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !read.Read {
		t.Fatalf("notification not read")
	}

	unread, _ := repo.ListForUser(ctx, "u1", true, 10)
	if len(unread) != 0 {
		t.Fatalf("unread = %d, want 0", len(unread))
	}
	all, _ := repo.ListForUser(ctx, "u1", false, 10)
	if len(all) != 1 {
		t.Fatalf("all = %d, want 1", len(all))
	}
}
