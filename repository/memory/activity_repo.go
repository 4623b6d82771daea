package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type activityRepository struct {
	store *Store
}

// NewActivityRepository returns an append-only ActivityRepository backed by store.
func NewActivityRepository(store *Store) repository.ActivityRepository {
	return &activityRepository{store: store}
}

func (r *activityRepository) Append(_ context.Context, entry *domain.ActivityLogEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.activity {
		if existing.ID == entry.ID {
			return nil
		}
	}
	stored := *entry
	stored.Details = append([]byte(nil), entry.Details...)
	r.store.activity = append(r.store.activity, stored)
	return nil
}

func (r *activityRepository) List(_ context.Context, filter repository.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.ActivityLogEntry
	for _, entry := range r.store.activity {
		if filter.Matches(&entry) {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	_, to := paginate(len(out), filter.Limit, 0, false)
	return out[:to], nil
}

type notificationRepository struct {
	store *Store
}

// NewNotificationRepository returns a NotificationRepository backed by store.
func NewNotificationRepository(store *Store) repository.NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if n == nil || n.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.notifications {
		if existing.ID == n.ID {
			return nil
		}
	}
	stored := *n
	r.store.notifications = append(r.store.notifications, &stored)
	return nil
}

func (r *notificationRepository) ListForUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.Notification
	for _, n := range r.store.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, *n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	_, to := paginate(len(out), limit, 0, false)
	return out[:to], nil
}

func (r *notificationRepository) MarkRead(_ context.Context, userID, id string) (*domain.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.notifications {
		if n.ID == id && n.UserID == userID {
			n.MarkRead()
			out := *n
			return &out, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}
