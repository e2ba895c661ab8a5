package domain

import "sort"

// Role is a privilege rank inside a church. Higher levels dominate lower ones.
type Role string

const (
	RoleMember     Role = "member"
	RoleLeader     Role = "leader"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleLevels is the single source of truth for the hierarchy.
// Adding a role means adding one entry here.
var roleLevels = map[Role]int{
	RoleMember:     1,
	RoleLeader:     2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// LevelOf returns the numeric level of a role. Unknown roles map to 0,
// which dominates nothing.
func LevelOf(r Role) int {
	return roleLevels[r]
}

// Dominates reports whether caller has at least the privilege of required.
func Dominates(caller, required Role) bool {
	return LevelOf(caller) >= LevelOf(required)
}

// RolesAtOrAbove returns every role whose level is at least LevelOf(min),
// ordered from lowest to highest level.
func RolesAtOrAbove(min Role) []Role {
	floor := LevelOf(min)
	var roles []Role
	for r, level := range roleLevels {
		if level >= floor {
			roles = append(roles, r)
		}
	}
	sort.Slice(roles, func(i, j int) bool {
		return roleLevels[roles[i]] < roleLevels[roles[j]]
	})
	return roles
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	_, ok := roleLevels[r]
	return ok
}
