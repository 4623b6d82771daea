package domain

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectActive     ProjectStatus = "active"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCompleted  ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// Project groups tasks. Its counters and auto status are a cached projection of
// the member tasks, rebuilt by Recalculate.
type Project struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	OwnerID         string   `json:"owner_id"`
	Collaborators   []string `json:"collaborators"`
	AssignedTeams   []string `json:"assigned_teams"`
	ProjectManagers []string `json:"project_managers"`

	TaskCount            int            `json:"task_count"`
	CompletedTaskCount   int            `json:"completed_task_count"`
	ProgressPercentage   float64        `json:"progress_percentage"`
	AutoCalculatedStatus ProjectStatus  `json:"auto_calculated_status"`
	StatusOverride       *ProjectStatus `json:"status_override"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveStatus is the override when one is set, else the auto-calculated status.
func (p *Project) EffectiveStatus() ProjectStatus {
	if p.StatusOverride != nil {
		return *p.StatusOverride
	}
	if p.AutoCalculatedStatus == "" {
		return ProjectNotStarted
	}
	return p.AutoCalculatedStatus
}

// Membership returns the identities with access to the project.
func (p *Project) Membership() Membership {
	var owners []string
	if p.OwnerID != "" {
		owners = []string{p.OwnerID}
	}
	return Membership{
		Owners:        owners,
		Collaborators: p.Collaborators,
		AssignedTeams: p.AssignedTeams,
		Managers:      p.ProjectManagers,
	}
}

// Stakeholders returns owner, collaborators and managers without duplicates.
func (p *Project) Stakeholders() []string {
	all := []string{p.OwnerID}
	all = append(all, p.Collaborators...)
	all = append(all, p.ProjectManagers...)
	return uniqueStrings(all)
}

// Recalculate rebuilds counters and auto status from tasks belonging to the project.
// staleAfter enables the optional on_hold rule for projects whose open tasks have
// not been touched within the window; zero disables it.
func (p *Project) Recalculate(tasks []Task, now time.Time, staleAfter time.Duration) {
	total, completed, blocked := 0, 0, 0
	var lastActivity time.Time
	for i := range tasks {
		t := &tasks[i]
		if t.ProjectID != p.ID {
			continue
		}
		total++
		switch t.Status {
		case TaskCompleted:
			completed++
		case TaskBlocked:
			blocked++
		}
		if t.UpdatedAt.After(lastActivity) {
			lastActivity = t.UpdatedAt
		}
	}

	p.TaskCount = total
	p.CompletedTaskCount = completed
	p.ProgressPercentage = ProgressPercentage(completed, total)

	switch {
	case total == 0:
		p.AutoCalculatedStatus = ProjectNotStarted
	case completed == total:
		p.AutoCalculatedStatus = ProjectCompleted
	case blocked > 0:
		p.AutoCalculatedStatus = ProjectOnHold
	case staleAfter > 0 && !lastActivity.IsZero() && now.Sub(lastActivity) > staleAfter:
		p.AutoCalculatedStatus = ProjectOnHold
	default:
		p.AutoCalculatedStatus = ProjectActive
	}
}

// ProgressPercentage is completed/total*100 rounded to two places, 0 when total is 0.
func ProgressPercentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(completed) / float64(total) * 100)
}

// Normalize fills defaults and dedupes membership sets.
func (p *Project) Normalize() {
	if p.AutoCalculatedStatus == "" {
		p.AutoCalculatedStatus = ProjectNotStarted
	}
	p.Collaborators = uniqueStrings(p.Collaborators)
	p.AssignedTeams = uniqueStrings(p.AssignedTeams)
	p.ProjectManagers = uniqueStrings(p.ProjectManagers)
}

// Validate checks user-controlled fields.
func (p *Project) Validate() error {
	if p == nil {
		return ErrInvalidPayload
	}
	if p.Name == "" {
		return Validationf("name is required")
	}
	if p.StatusOverride != nil && !p.StatusOverride.Valid() {
		return Validationf("unknown project status %q", *p.StatusOverride)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return Validationf("end_date must not be before start_date")
	}
	return nil
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Collaborators = cloneStrings(p.Collaborators)
	c.AssignedTeams = cloneStrings(p.AssignedTeams)
	c.ProjectManagers = cloneStrings(p.ProjectManagers)
	c.StartDate = cloneTime(p.StartDate)
	c.EndDate = cloneTime(p.EndDate)
	if p.StatusOverride != nil {
		s := *p.StatusOverride
		c.StatusOverride = &s
	}
	return &c
}

// ProjectView is the JSON shape returned to clients: the entity plus its effective status.
type ProjectView struct {
	*Project
	Status ProjectStatus `json:"status"`
}

// View wraps p with its effective status for responses.
func (p *Project) View() ProjectView {
	return ProjectView{Project: p, Status: p.EffectiveStatus()}
}
