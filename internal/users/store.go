package users

import (
	"context"

	id "amparo/pkg/domain"
)

// Store is interface-driven so the in-memory and postgres implementations stay
// swappable under the same service wiring.
type Store interface {
	Save(ctx context.Context, user User) error
	FindByID(ctx context.Context, userID id.UserID) (User, error)
	// ListByRole returns active accounts holding the role. Admin fan-out uses
	// this at dispatch time instead of a cached admin list.
	ListByRole(ctx context.Context, role id.Role) ([]User, error)
}
