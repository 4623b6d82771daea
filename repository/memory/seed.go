package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

// Seed is the document accepted by LoadSeed.
type Seed struct {
	Users []domain.User `json:"users"`
	Teams []domain.Team `json:"teams"`
}

// LoadSeed reads users and teams from a JSON file into the store.
func LoadSeed(store *Store, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("memory seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return 0, fmt.Errorf("memory seed %s: %w", path, err)
	}
	return store.Apply(seed), nil
}

// Apply inserts the seed, replacing records with the same ID, and returns how
// many records it wrote. Users without a status are active.
func (s *Store) Apply(seed Seed) int {
	now := time.Now()
	written := 0
	for _, u := range seed.Users {
		if u.ID == "" {
			continue
		}
		if u.Status == "" {
			u.Status = "active"
		}
		stampCreated(&u.CreatedAt, &u.UpdatedAt)
		user := u
		s.mu.Lock()
		s.users[user.ID] = &user
		s.mu.Unlock()
		written++
	}
	for _, t := range seed.Teams {
		if t.ID == "" {
			continue
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		s.PutTeam(t)
		written++
	}
	return written
}
