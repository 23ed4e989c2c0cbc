package domain

import dErrors "amparo/pkg/domain-errors"

// Role is the closed set of caller roles. Branching on roles happens through
// exhaustive switches; display labels live in the data table below rather than
// in scattered conditionals.
type Role string

const (
	RoleSponsor Role = "sponsor"
	RoleAdmin   Role = "admin"
)

// roleLabels maps roles to their display names.
var roleLabels = map[Role]string{
	RoleSponsor: "Godparent",
	RoleAdmin:   "Administrator",
}

// ParseRole validates a role claim coming from an identity assertion.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleLabels[r]; !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "unknown role claim")
	}
	return r, nil
}

// Label returns the human-readable name for the role.
func (r Role) Label() string { return roleLabels[r] }

// Other returns the counterpart role in a two-party conversation.
func (r Role) Other() Role {
	if r == RoleSponsor {
		return RoleAdmin
	}
	return RoleSponsor
}

func (r Role) String() string { return string(r) }
