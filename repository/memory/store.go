// Package memory holds process-local repository implementations. They back the
// "memory" storage driver and double as fakes in tests.
package memory

import (
	"sync"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

// Store is the shared state behind every memory repository.
type Store struct {
	mu            sync.RWMutex
	tasks         map[string]*domain.Task
	projects      map[string]*domain.Project
	users         map[string]*domain.User
	teams         map[string]*domain.Team
	activity      []domain.ActivityLogEntry
	notifications []*domain.Notification
}

func NewStore() *Store {
	return &Store{
		tasks:    make(map[string]*domain.Task),
		projects: make(map[string]*domain.Project),
		users:    make(map[string]*domain.User),
		teams:    make(map[string]*domain.Team),
	}
}

// PutTeam seeds a team; teams are managed outside this service.
func (s *Store) PutTeam(team domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := team
	t.MemberIDs = append([]string(nil), team.MemberIDs...)
	s.teams[t.ID] = &t
}

func paginate(n, limit, offset int, unbounded bool) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	if unbounded {
		return offset, n
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

// stampCreated fills zero timestamps the way the SQL defaults would.
func stampCreated(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
