package domain

// Capability is a bit set of what an actor may do with an entity.
type Capability uint8

const (
	CapView Capability = 1 << iota
	CapEdit
	CapManage
)

func (c Capability) Has(want Capability) bool { return c&want == want }

// Membership lists the identities that grant access to a task or project.
type Membership struct {
	Owners        []string
	AssignedUsers []string
	Collaborators []string
	AssignedTeams []string
	Managers      []string
}

// WithManagers returns a copy of m that also grants management to managers.
func (m Membership) WithManagers(managers []string) Membership {
	out := m
	out.Managers = append(append([]string(nil), m.Managers...), managers...)
	return out
}

// Capabilities computes what actor may do with an entity carrying membership m.
// It is a pure function of set membership and role. Management needs the admin
// role or a listing in m.Managers; the project_manager role alone grants nothing.
func Capabilities(actor Actor, m Membership) Capability {
	if actor.UserID == "" {
		return 0
	}
	if actor.IsAdmin() {
		return CapView | CapEdit | CapManage
	}
	if containsString(m.Managers, actor.UserID) {
		return CapView | CapEdit | CapManage
	}

	member := containsString(m.Owners, actor.UserID) ||
		containsString(m.AssignedUsers, actor.UserID) ||
		containsString(m.Collaborators, actor.UserID) ||
		intersects(m.AssignedTeams, actor.TeamIDs)
	if !member {
		return 0
	}

	return CapView | CapEdit
}

func containsString(values []string, target string) bool {
	if target == "" {
		return false
	}
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if containsString(b, v) {
			return true
		}
	}
	return false
}

// uniqueStrings drops empty values and duplicates while keeping first-seen order.
func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Difference returns the values of next that are not present in prev.
func Difference(next, prev []string) []string {
	var out []string
	for _, v := range uniqueStrings(next) {
		if !containsString(prev, v) {
			out = append(out, v)
		}
	}
	return out
}
