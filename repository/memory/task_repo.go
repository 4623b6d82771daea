package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type taskRepository struct {
	store *Store
}

// NewTaskRepository returns a TaskRepository backed by store.
func NewTaskRepository(store *Store) repository.TaskRepository {
	return &taskRepository{store: store}
}

func (r *taskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	task, ok := r.store.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.Task
	for _, task := range r.store.tasks {
		if filter.Matches(task) {
			out = append(out, *task.Clone())
		}
	}
	sortTasks(out)
	from, to := paginate(len(out), filter.Limit, filter.Offset, filter.Unbounded)
	return out[from:to], nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	return r.List(ctx, repository.TaskFilter{ProjectID: projectID, Unbounded: true})
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.tasks[task.ID]; exists {
		return nil, domain.NewError(domain.ErrCodeConflict, "task already exists")
	}
	stampCreated(&task.CreatedAt, &task.UpdatedAt)
	task.Version = 1
	r.store.tasks[task.ID] = task.Clone()
	return task, nil
}

func (r *taskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if current.Version != task.Version {
		return domain.ErrStaleVersion
	}
	task.Version++
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = time.Now()
	}
	r.store.tasks[task.ID] = task.Clone()
	return nil
}

func (r *taskRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.store.tasks, id)
	return nil
}

func sortTasks(tasks []domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
