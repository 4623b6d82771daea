package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

const sessionPrefix = "taskpulse:session:"

type sessionRepository struct {
	client *redislib.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionRepository stores login sessions as JSON values whose Redis TTL
// tracks the session's ExpiresAt.
func NewSessionRepository(client *redislib.Client, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{client: client, ttl: ttl, now: time.Now}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	session, err := decodeSession(raw)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	payload, ttl, err := encodeSession(session, r.ttl, r.now())
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Extend moves ExpiresAt forward and rewrites the value with the new TTL so
// the stored session agrees with its key lifetime. The key is watched; a
// concurrent write aborts the refresh with a conflict.
func (r *sessionRepository) Extend(ctx context.Context, id string, ttlSeconds int) error {
	key := sessionKey(id)
	duration := time.Duration(ttlSeconds) * time.Second
	if duration <= 0 {
		duration = r.ttl
	}

	err := r.client.Watch(ctx, func(tx *redislib.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redislib.Nil) {
				return domain.ErrSessionNotFound
			}
			return err
		}
		session, err := decodeSession(raw)
		if err != nil {
			return err
		}
		payload, ttl, err := extendSession(session, duration, r.now())
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redislib.TxFailedErr):
		return domain.WrapError(domain.ErrCodeConflict, "session changed during refresh", err)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return err
	default:
		return fmt.Errorf("extend session: %w", err)
	}
}

func sessionKey(id string) string {
	return sessionPrefix + id
}

// encodeSession fills missing timestamps and returns the payload with the
// key TTL matching the remaining session lifetime.
func encodeSession(session *domain.Session, fallback time.Duration, now time.Time) ([]byte, time.Duration, error) {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(fallback)
	}
	ttl := session.ExpiresAt.Sub(now)
	if ttl <= 0 {
		ttl = fallback
		session.ExpiresAt = now.Add(fallback)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, 0, fmt.Errorf("encode session: %w", err)
	}
	return payload, ttl, nil
}

func extendSession(session *domain.Session, duration time.Duration, now time.Time) ([]byte, time.Duration, error) {
	session.ExpiresAt = now.Add(duration)
	return encodeSession(session, duration, now)
}

func decodeSession(raw []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
