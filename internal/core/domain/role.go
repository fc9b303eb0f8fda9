package domain

type Role string

const (
	RoleVoter        Role = "VOTER"
	RoleAdmin        Role = "ADMIN"
	RoleTallyOfficer Role = "TALLY_OFFICER"
)

// Role sets admitted by the guarded operations.
var (
	ElectionManagers = []Role{RoleAdmin}
	ResultsOfficials = []Role{RoleAdmin, RoleTallyOfficer}
)

func (r Role) Valid() bool {
	switch r {
	case RoleVoter, RoleAdmin, RoleTallyOfficer:
		return true
	}
	return false
}

// EffectiveRoles expands an assigned role into the roles it grants. Every
// authenticated user is a voter; an unknown assignment grants nothing more.
func EffectiveRoles(assigned Role) []Role {
	roles := []Role{RoleVoter}
	if assigned.Valid() && assigned != RoleVoter {
		roles = append(roles, assigned)
	}
	return roles
}

// HasAnyRole reports whether any of have is in need. An empty need set
// permits every caller.
func HasAnyRole(have []Role, need ...Role) bool {
	if len(need) == 0 {
		return true
	}
	for _, h := range have {
		for _, n := range need {
			if h == n {
				return true
			}
		}
	}
	return false
}
