package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

// TokenIssuer signs access tokens for a session.
type TokenIssuer interface {
	Issue(user *domain.User, sessionID string) (token string, expiresAt time.Time, err error)
}

type UseCase struct {
	users    repository.UserRepository
	teams    repository.TeamRepository
	sessions repository.SessionRepository
	tokens   TokenIssuer
	logger   *zap.Logger

	Now func() time.Time
}

func New(
	users repository.UserRepository,
	teams repository.TeamRepository,
	sessions repository.SessionRepository,
	tokens TokenIssuer,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		teams:    teams,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
		Now:      time.Now,
	}
}

// CreateSession opens a session for an active user and attaches a signed token.
func (uc *UseCase) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error) {
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := uc.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Metadata:  map[string]string{"role": string(user.Role)},
	}
	if err := uc.attachToken(user, session); err != nil {
		return nil, err
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	uc.logger.Info("session created", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession extends a live session and issues a fresh token for it.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := uc.activeUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.Now().Add(ttl)
	if err := uc.attachToken(user, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// ResolveActor builds the identity used for access checks from the stored
// user and their team memberships.
func (uc *UseCase) ResolveActor(ctx context.Context, userID string) (domain.Actor, error) {
	if userID == "" {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.Actor{}, domain.ErrUnauthorized
		}
		return domain.Actor{}, err
	}

	actor := domain.Actor{UserID: user.ID, Role: user.Role}
	if !actor.Role.Valid() {
		actor.Role = domain.RoleUser
	}
	if uc.teams != nil {
		teams, err := uc.teams.ListForUser(ctx, user.ID)
		if err != nil {
			return domain.Actor{}, err
		}
		for _, t := range teams {
			actor.TeamIDs = append(actor.TeamIDs, t.ID)
		}
	}
	return actor, nil
}

func (uc *UseCase) activeUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != "" && !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func (uc *UseCase) attachToken(user *domain.User, session *domain.Session) error {
	if uc.tokens == nil {
		return nil
	}
	token, expiresAt, err := uc.tokens.Issue(user, session.ID)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "token issue failed", err)
	}
	session.Token = token
	if expiresAt.Before(session.ExpiresAt) {
		if session.Metadata == nil {
			session.Metadata = map[string]string{}
		}
		session.Metadata["access_expires_at"] = expiresAt.UTC().Format(time.RFC3339)
	}
	return nil
}
