package monitor

import "time"

// Status is the latest probe snapshot.
type Status struct {
	Services   map[string]bool `json:"services"`
	Buffer     bool            `json:"buffer"`
	BufferSize int             `json:"buffer_size"`
	LastCheck  time.Time       `json:"last_check"`
}

// Healthy reports whether every probed service answered.
func (s Status) Healthy() bool {
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}
