package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

func TestTaskUpdateRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewStore())

	created, err := repo.Create(ctx, &domain.Task{Title: "write", Status: domain.TaskTodo})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Version != 1 {
		t.Fatalf("version = %d, want 1", created.Version)
	}

	first, _ := repo.GetByID(ctx, created.ID)
	second, _ := repo.GetByID(ctx, created.ID)

	first.Title = "first"
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.Version != 2 {
		t.Fatalf("version after update = %d, want 2", first.Version)
	}

	second.Title = "second"
	if err := repo.Update(ctx, second); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("stale update err = %v, want CONFLICT", err)
	}

	stored, _ := repo.GetByID(ctx, created.ID)
	if stored.Title != "first" {
		t.Fatalf("title = %q, stale write leaked", stored.Title)
	}
}

func TestTaskUpdateConcurrentOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewStore())
	created, _ := repo.Create(ctx, &domain.Task{Title: "race", Status: domain.TaskTodo})

	const workers = 8
	copies := make([]*domain.Task, workers)
	for i := range copies {
		copies[i], _ = repo.GetByID(ctx, created.ID)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(task *domain.Task) {
			defer wg.Done()
			if err := repo.Update(ctx, task); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(copies[i])
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}

func TestTaskReadsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewStore())
	created, _ := repo.Create(ctx, &domain.Task{Title: "x", AssignedUsers: []string{"u1"}})

	got, _ := repo.GetByID(ctx, created.ID)
	got.AssignedUsers[0] = "mutated"

	again, _ := repo.GetByID(ctx, created.ID)
	if again.AssignedUsers[0] != "u1" {
		t.Fatalf("caller mutation reached the store")
	}
}

func TestTaskListScope(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewStore())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []domain.Task{
		{ID: "mine", Owners: []string{"u1"}, CreatedAt: base},
		{ID: "team", AssignedTeams: []string{"t1"}, CreatedAt: base.Add(time.Minute)},
		{ID: "project", ProjectID: "p1", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "other", Owners: []string{"u2"}, CreatedAt: base.Add(3 * time.Minute)},
	}
	for i := range seed {
		if _, err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create %s: %v", seed[i].ID, err)
		}
	}

	got, err := repo.List(ctx, repository.TaskFilter{VisibleTo: "u1", TeamIDs: []string{"t1"}, ProjectIDs: []string{"p1"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"project", "team", "mine"}
	if len(got) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	all, _ := repo.List(ctx, repository.TaskFilter{})
	if len(all) != 4 {
		t.Fatalf("unscoped list = %d, want 4", len(all))
	}

	page, _ := repo.List(ctx, repository.TaskFilter{Limit: 2, Offset: 1})
	if len(page) != 2 || page[0].ID != "project" {
		t.Fatalf("page = %+v", page)
	}
}

func TestTaskDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(NewStore())
	created, _ := repo.Create(ctx, &domain.Task{Title: "x"})
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); err != domain.ErrTaskNotFound {
		t.Fatalf("get after delete err = %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != domain.ErrTaskNotFound {
		t.Fatalf("second delete err = %v", err)
	}
}
