package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	live := &domain.Session{ID: "live", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	dead := &domain.Session{
		ID:        "dead",
		UserID:    "u1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Second),
	}
	if err := repo.Save(ctx, live); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, dead); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := repo.Get(ctx, "live"); err != nil {
		t.Fatalf("get live: %v", err)
	}
	if _, err := repo.Get(ctx, "dead"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("get expired err = %v, want NOT_FOUND", err)
	}
	if err := repo.Delete(ctx, "live"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "live"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("get deleted err = %v", err)
	}
}
