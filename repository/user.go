package repository

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
}

type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Team, error)
}
