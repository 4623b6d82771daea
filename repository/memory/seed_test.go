package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	doc := `{
		"users": [
			{"id": "u1", "username": "ann", "role": "project_manager"},
			{"id": "u2", "username": "bo", "role": "user", "status": "disabled"}
		],
		"teams": [{"id": "t1", "name": "core", "member_ids": ["u1", "u2"]}]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	store := NewStore()
	n, err := LoadSeed(store, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 3 {
		t.Fatalf("records = %d, want 3", n)
	}

	ctx := context.Background()
	u1, err := NewUserRepository(store).GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get u1: %v", err)
	}
	if u1.Status != "active" {
		t.Fatalf("default status = %q", u1.Status)
	}
	u2, _ := NewUserRepository(store).GetByID(ctx, "u2")
	if u2.Status != "disabled" {
		t.Fatalf("explicit status overwritten: %q", u2.Status)
	}
	teams, _ := NewTeamRepository(store).ListForUser(ctx, "u2")
	if len(teams) != 1 || teams[0].ID != "t1" {
		t.Fatalf("teams = %+v", teams)
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	if _, err := LoadSeed(NewStore(), filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error")
	}
}
