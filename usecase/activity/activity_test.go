package activity

import (
	"context"
	"testing"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository/memory"
)

func seedFeed(t *testing.T) (*UseCase, *Emitter, string, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	projects := memory.NewProjectRepository(store)
	activityRepo := memory.NewActivityRepository(store)
	notifications := memory.NewNotificationRepository(store)

	managed, err := projects.Create(ctx, &domain.Project{Name: "Managed", OwnerID: "owner", ProjectManagers: []string{"pm"}})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	other, err := projects.Create(ctx, &domain.Project{Name: "Other", OwnerID: "owner"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	e := fixedEmitter(NewEmitter(activityRepo, notifications, nil, nil, nil))
	for _, entry := range []domain.ActivityLogEntry{
		{UserID: "owner", Action: domain.ActionTaskCreated, EntityID: "a", ProjectID: managed.ID},
		{UserID: "owner", Action: domain.ActionTaskCreated, EntityID: "b", ProjectID: other.ID},
		{UserID: "pm", Action: domain.ActionTaskCreated, EntityID: "c"},
	} {
		if err := e.Record(ctx, entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	return New(activityRepo, notifications, projects, nil), e, managed.ID, other.ID
}

func entityIDs(entries []domain.ActivityLogEntry) map[string]bool {
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.EntityID] = true
	}
	return out
}

func TestListActivity(t *testing.T) {
	ctx := context.Background()
	uc, _, managedID, otherID := seedFeed(t)
	pm := domain.Actor{UserID: "pm", Role: domain.RoleProjectManager}

	if _, err := uc.ListActivity(ctx, domain.Actor{UserID: "owner", Role: domain.RoleUser}, "", 0); err != domain.ErrForbidden {
		t.Fatalf("plain user err = %v", err)
	}

	scoped, err := uc.ListActivity(ctx, pm, "", 0)
	if err != nil {
		t.Fatalf("pm feed: %v", err)
	}
	ids := entityIDs(scoped)
	if len(scoped) != 2 || !ids["a"] || !ids["c"] {
		t.Fatalf("pm feed = %v", ids)
	}

	project, err := uc.ListActivity(ctx, pm, managedID, 0)
	if err != nil {
		t.Fatalf("project feed: %v", err)
	}
	if len(project) != 1 || project[0].EntityID != "a" {
		t.Fatalf("project feed = %+v", project)
	}
	if _, err := uc.ListActivity(ctx, pm, otherID, 0); err != domain.ErrProjectNotFound {
		t.Fatalf("unmanaged project err = %v", err)
	}

	all, err := uc.ListActivity(ctx, domain.Actor{UserID: "root", Role: domain.RoleAdmin}, "", 2)
	if err != nil {
		t.Fatalf("admin feed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin feed limited to %d", len(all))
	}
}

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	uc, e, _, _ := seedFeed(t)
	dev := domain.Actor{UserID: "dev", Role: domain.RoleUser}

	if err := e.Notify(ctx, []string{"dev", "qa"}, "lead", domain.Notification{Title: "hello"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	inbox, err := uc.ListNotifications(ctx, dev, true, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("inbox = %+v", inbox)
	}
	id := inbox[0].ID

	if _, err := uc.MarkRead(ctx, domain.Actor{UserID: "qa"}, id); err != domain.ErrNotificationNotFound {
		t.Fatalf("foreign mark err = %v", err)
	}
	for i := 0; i < 2; i++ {
		read, err := uc.MarkRead(ctx, dev, id)
		if err != nil {
			t.Fatalf("mark read #%d: %v", i+1, err)
		}
		if !read.Read {
			t.Fatalf("notification still unread")
		}
	}
	if unread, _ := uc.ListNotifications(ctx, dev, true, 0); len(unread) != 0 {
		t.Fatalf("unread after marking = %d", len(unread))
	}
	if everything, _ := uc.ListNotifications(ctx, dev, false, 0); len(everything) != 1 {
		t.Fatalf("all = %d", len(everything))
	}

	if _, err := uc.ListNotifications(ctx, domain.Actor{}, false, 0); err != domain.ErrUnauthorized {
		t.Fatalf("anonymous err = %v", err)
	}
}
