package domain

import "time"

// Role is the platform-wide role of a user.
type Role string

const (
	RoleUser           Role = "user"
	RoleProjectManager Role = "project_manager"
	RoleAdmin          Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleProjectManager, RoleAdmin:
		return true
	}
	return false
}

// User represents an authenticated identity in the platform.
type User struct {
	ID        string            `json:"id"`
	Email     string            `json:"email,omitempty"`
	Username  string            `json:"username,omitempty"`
	Role      Role              `json:"role"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// DisplayName prefers the username and falls back to the email, then the id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// Team groups users so tasks and projects can be shared with all members at once.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether userID belongs to the team.
func (t *Team) HasMember(userID string) bool {
	if t == nil {
		return false
	}
	return containsString(t.MemberIDs, userID)
}

// Actor is the resolved identity performing an operation.
type Actor struct {
	UserID  string   `json:"user_id"`
	Role    Role     `json:"role"`
	TeamIDs []string `json:"team_ids,omitempty"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsElevated reports whether the actor holds a project manager or admin role.
func (a Actor) IsElevated() bool {
	return a.Role == RoleAdmin || a.Role == RoleProjectManager
}
