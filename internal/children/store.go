package children

import (
	"context"

	id "amparo/pkg/domain"
)

type Store interface {
	Save(ctx context.Context, child Child) error
	FindByID(ctx context.Context, childID id.ChildID) (Child, error)
	ListByStatus(ctx context.Context, status Status) ([]Child, error)
	// SetStatus mutates only the status and updated timestamp. The ledger calls
	// this inside its transaction so child and sponsorship state move together.
	SetStatus(ctx context.Context, childID id.ChildID, status Status) error
}
