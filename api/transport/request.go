package transport

import (
	"bytes"
	"encoding/json"
	"time"
)

type ProfileUpdateRequest struct {
	Email    *string           `json:"email"`
	Username *string           `json:"username"`
	Meta     map[string]string `json:"metadata"`
}

type SubtaskRequest struct {
	Text              string     `json:"text"`
	Completed         bool       `json:"completed"`
	Priority          string     `json:"priority"`
	AssignedUsers     []string   `json:"assigned_users"`
	DueDate           *time.Time `json:"due_date"`
	EstimatedDuration *int       `json:"estimated_duration"`
}

type SubtaskUpdateRequest struct {
	Completed bool `json:"completed"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type TaskCreateRequest struct {
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Status            string           `json:"status"`
	Priority          string           `json:"priority"`
	ProjectID         string           `json:"project_id"`
	AssignedUsers     []string         `json:"assigned_users"`
	Collaborators     []string         `json:"collaborators"`
	AssignedTeams     []string         `json:"assigned_teams"`
	Tags              []string         `json:"tags"`
	EstimatedDuration *int             `json:"estimated_duration"`
	DueDate           *time.Time       `json:"due_date"`
	Todos             []SubtaskRequest `json:"todos"`
}

// TaskUpdateRequest is a partial update: absent fields stay unchanged.
// due_date distinguishes absent from an explicit null, which clears it.
type TaskUpdateRequest struct {
	Title             *string   `json:"title"`
	Description       *string   `json:"description"`
	Status            *string   `json:"status"`
	Priority          *string   `json:"priority"`
	ProjectID         *string   `json:"project_id"`
	AssignedUsers     *[]string `json:"assigned_users"`
	Collaborators     *[]string `json:"collaborators"`
	AssignedTeams     *[]string `json:"assigned_teams"`
	Tags              *[]string `json:"tags"`
	EstimatedDuration *int      `json:"estimated_duration"`
	ActualDuration    *int      `json:"actual_duration"`
	DueDate           Nullable  `json:"due_date"`
}

type ProjectCreateRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Collaborators   []string   `json:"collaborators"`
	AssignedTeams   []string   `json:"assigned_teams"`
	ProjectManagers []string   `json:"project_managers"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
}

// StatusOverrideRequest sets the manual project status; null clears it.
type StatusOverrideRequest struct {
	Status *string `json:"status"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

// Nullable records whether a JSON field was present and whether it was null.
type Nullable struct {
	Set   bool
	Null  bool
	Value json.RawMessage
}

func (n *Nullable) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		return nil
	}
	n.Value = append(n.Value[:0], data...)
	return nil
}

// Time decodes the value as an RFC 3339 timestamp.
func (n Nullable) Time() (*time.Time, error) {
	if !n.Set || n.Null {
		return nil, nil
	}
	var t time.Time
	if err := json.Unmarshal(n.Value, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
