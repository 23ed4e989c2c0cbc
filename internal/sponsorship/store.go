package sponsorship

import (
	"context"

	id "amparo/pkg/domain"
)

// Store persists sponsorships. Implementations must reject writes that would
// produce a second ACTIVE sponsorship for the same sponsor or the same child
// with sentinel.ErrConflict, so the invariant is storage-enforced rather than
// purely application-checked.
type Store interface {
	Create(ctx context.Context, s Sponsorship) error
	FindByID(ctx context.Context, sid id.SponsorshipID) (Sponsorship, error)
	Update(ctx context.Context, s Sponsorship) error
	// ActiveBySponsor and ActiveByChild return sentinel.ErrNotFound when no
	// ACTIVE sponsorship exists for the key.
	ActiveBySponsor(ctx context.Context, sponsorID id.UserID) (Sponsorship, error)
	ActiveByChild(ctx context.Context, childID id.ChildID) (Sponsorship, error)
	ListBySponsor(ctx context.Context, sponsorID id.UserID) ([]Sponsorship, error)
}

// StoreTx is the transactional boundary for ledger mutations. SelectChild's
// check-then-act sequence and every lifecycle transition run inside RunInTx so
// the sponsorship write and the paired child status write commit together.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
