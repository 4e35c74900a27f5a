package domain

import (
	"strings"
	"time"
)

// Membership links a user to an organization with a role.
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	Role      Role
	CreatedAt time.Time
}

// Role is the permission tier a membership grants inside its organization.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
	RoleViewer  Role = "VIEWER"
)

var roleRank = map[Role]int{
	RoleViewer:  1,
	RoleMember:  2,
	RoleManager: 3,
	RoleAdmin:   4,
}

// ParseRole decodes a stored or client-supplied role. Matching is case-insensitive;
// ok is false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return "", false
	}
	return r, true
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min. Unknown roles never satisfy a minimum.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

func (r Role) String() string { return string(r) }
