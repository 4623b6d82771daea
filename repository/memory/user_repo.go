package memory

import (
	"context"
	"sort"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type userRepository struct {
	store *Store
}

// NewUserRepository returns a UserRepository backed by store.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (r *userRepository) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.User
	for _, id := range ids {
		if user, ok := r.store.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *userRepository) Upsert(_ context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.users[user.ID]; ok && user.CreatedAt.IsZero() {
		user.CreatedAt = existing.CreatedAt
	}
	stampCreated(&user.CreatedAt, &user.UpdatedAt)
	stored := *user
	r.store.users[user.ID] = &stored
	return nil
}

type teamRepository struct {
	store *Store
}

// NewTeamRepository returns a TeamRepository backed by store.
func NewTeamRepository(store *Store) repository.TeamRepository {
	return &teamRepository{store: store}
}

func (r *teamRepository) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	team, ok := r.store.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	out := *team
	out.MemberIDs = append([]string(nil), team.MemberIDs...)
	return &out, nil
}

func (r *teamRepository) List(_ context.Context) ([]domain.Team, error) {
	return r.collect(func(*domain.Team) bool { return true }), nil
}

func (r *teamRepository) ListForUser(_ context.Context, userID string) ([]domain.Team, error) {
	return r.collect(func(t *domain.Team) bool { return t.HasMember(userID) }), nil
}

func (r *teamRepository) collect(keep func(*domain.Team) bool) []domain.Team {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.Team
	for _, team := range r.store.teams {
		if keep(team) {
			t := *team
			t.MemberIDs = append([]string(nil), team.MemberIDs...)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
