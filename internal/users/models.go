// Package users is the registry of sponsor and admin accounts. Account
// management CRUD lives in the admin surface outside this service; the core
// only needs role lookups and the query-time admin list for notification
// fan-out.
package users

import (
	"time"

	id "amparo/pkg/domain"
)

// User is a role-tagged account. Sponsors are users with RoleSponsor.
type User struct {
	ID        id.UserID
	Name      string
	Email     string
	Role      id.Role
	Active    bool
	CreatedAt time.Time
}

// IsSponsor reports whether the account can hold sponsorships.
func (u User) IsSponsor() bool { return u.Role == id.RoleSponsor && u.Active }
