package models

import "strings"

// Role is the closed set of user roles. The wire values match what the
// dashboard sends and displays, so they are stored verbatim.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleTeamLead   Role = "Team Lead"
	RoleTeamMember Role = "Team Member"
)

// ParseRole maps a wire/string value onto a Role. Comparison is
// case-insensitive so "team lead" and "Team Lead" are the same role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "team lead":
		return RoleTeamLead, true
	case "team member":
		return RoleTeamMember, true
	}
	return "", false
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeamLead || r == RoleTeamMember
}

func (r Role) String() string { return string(r) }
