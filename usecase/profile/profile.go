package profile

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

// Update holds the self-service profile fields. Role and status are managed
// by administrators elsewhere.
type Update struct {
	Email    *string
	Username *string
	Metadata map[string]string
}

type UseCase struct {
	users  repository.UserRepository
	teams  repository.TeamRepository
	logger *zap.Logger

	Now func() time.Time
}

// Profile is the caller's user record with their team memberships.
type Profile struct {
	*domain.User
	Teams []domain.Team `json:"teams"`
}

func New(users repository.UserRepository, teams repository.TeamRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		teams:  teams,
		logger: logger,
		Now:    time.Now,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user, Teams: []domain.Team{}}
	if uc.teams != nil {
		teams, err := uc.teams.ListForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if teams != nil {
			profile.Teams = teams
		}
	}
	return profile, nil
}

func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, update Update) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email != "" && !strings.Contains(email, "@") {
			return nil, domain.Validationf("email %q is not valid", email)
		}
		user.Email = email
	}
	if update.Username != nil {
		user.Username = strings.TrimSpace(*update.Username)
	}
	if update.Metadata != nil {
		user.Metadata = update.Metadata
	}
	user.UpdatedAt = uc.Now()

	if err := uc.users.Upsert(ctx, user); err != nil {
		uc.logger.Error("profile update failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}
