package profile

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository/memory"
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	store := memory.NewStore()
	store.Apply(memory.Seed{
		Users: []domain.User{{ID: "alice", Email: "alice@example.com", Role: domain.RoleUser}},
		Teams: []domain.Team{{ID: "t1", Name: "Core", MemberIDs: []string{"alice"}}},
	})
	uc := New(memory.NewUserRepository(store), memory.NewTeamRepository(store), nil)
	uc.Now = func() time.Time { return time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC) }
	return uc
}

func ptr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	uc := newUseCase(t)
	p, err := uc.GetProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Email != "alice@example.com" || len(p.Teams) != 1 || p.Teams[0].Name != "Core" {
		t.Fatalf("profile = %+v", p)
	}
	if _, err := uc.GetProfile(context.Background(), "ghost"); err != domain.ErrUserNotFound {
		t.Fatalf("unknown err = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(t)

	updated, err := uc.UpdateProfile(ctx, "alice", Update{
		Username: ptr("  ally "),
		Metadata: map[string]string{"tz": "UTC"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Username != "ally" || updated.Email != "alice@example.com" || updated.Metadata["tz"] != "UTC" {
		t.Fatalf("updated = %+v", updated)
	}
	if !updated.UpdatedAt.Equal(uc.Now()) {
		t.Fatalf("updated_at = %v", updated.UpdatedAt)
	}

	if _, err := uc.UpdateProfile(ctx, "alice", Update{Email: ptr("not-an-email")}); !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("bad email err = %v", err)
	}
	p, _ := uc.GetProfile(ctx, "alice")
	if p.Email != "alice@example.com" || p.Username != "ally" {
		t.Fatalf("stored = %+v", p.User)
	}
}
