package sponsorship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"amparo/internal/authz"
	"amparo/internal/children"
	"amparo/internal/notify"
	"amparo/internal/platform/metrics"
	"amparo/internal/users"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

// Notifier publishes outbound events. Delivery failures never fail the domain
// operation, so Publish has no error return.
type Notifier interface {
	Publish(ctx context.Context, event notify.Event)
}

// Service owns sponsorship creation and lifecycle transitions. Every mutation
// runs inside the StoreTx boundary so the sponsorship write and the paired
// child status write commit together.
type Service struct {
	ledger   Store
	children children.Store
	users    users.Store
	tx       StoreTx
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(ledger Store, childStore children.Store, userStore users.Store, tx StoreTx, notifier Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		ledger:   ledger,
		children: childStore,
		users:    userStore,
		tx:       tx,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// SelectChild pairs a sponsor with an available child. The exclusivity checks
// and the insert are evaluated within one transaction; a concurrent selection
// of the same child loses either to the pre-commit re-check (InvalidState) or
// to the storage uniqueness constraint (Conflict), never silently.
func (s *Service) SelectChild(ctx context.Context, sponsorID id.UserID, childID id.ChildID) (Sponsorship, error) {
	if sponsorID.IsNil() || childID.IsNil() {
		return Sponsorship{}, dErrors.New(dErrors.CodeBadRequest, "sponsor and child ids are required")
	}

	var (
		created Sponsorship
		child   children.Child
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		sponsor, err := s.users.FindByID(txCtx, sponsorID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "sponsor account does not exist")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "user store failure")
		}
		if !sponsor.IsSponsor() {
			return dErrors.New(dErrors.CodeForbidden, "account cannot hold sponsorships")
		}

		if _, err := s.ledger.ActiveBySponsor(txCtx, sponsorID); err == nil {
			return dErrors.New(dErrors.CodeInvalidState, "you are already sponsoring a child")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
		}

		child, err = s.children.FindByID(txCtx, childID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "child does not exist")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "child store failure")
		}
		if err := child.CanBeSelected(); err != nil {
			return err
		}
		if _, err := s.ledger.ActiveByChild(txCtx, childID); err == nil {
			return dErrors.New(dErrors.CodeInvalidState, "this child already has a sponsor")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
		}

		created = New(id.NewSponsorshipID(), sponsorID, childID, requestcontext.Now(txCtx))
		if err := s.ledger.Create(txCtx, created); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				if s.metrics != nil {
					s.metrics.SelectChildConflicts.Inc()
				}
				return dErrors.New(dErrors.CodeConflict, "child was assigned concurrently, refresh and retry")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create sponsorship")
		}
		if err := s.children.SetStatus(txCtx, childID, children.StatusSponsored); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark child sponsored")
		}
		return nil
	})
	if err != nil {
		return Sponsorship{}, err
	}

	if s.metrics != nil {
		s.metrics.SponsorshipsCreated.Inc()
	}
	s.notifier.Publish(ctx, notify.ToAdmins(
		"New sponsorship",
		fmt.Sprintf("%s %s has a new godparent", child.FirstName, child.LastName),
		notify.SeverityInfo,
		created.ID.String(),
	))
	s.logger.InfoContext(ctx, "sponsorship created",
		"sponsorship_id", created.ID.String(),
		"sponsor_id", sponsorID.String(),
		"child_id", childID.String(),
	)
	return created, nil
}

// ActiveForSponsor returns the sponsor's current ACTIVE sponsorship, or nil
// when there is none. Absence is an empty result, not an error.
func (s *Service) ActiveForSponsor(ctx context.Context, sponsorID id.UserID) (*Sponsorship, error) {
	sp, err := s.ledger.ActiveBySponsor(ctx, sponsorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
	}
	return &sp, nil
}

// Get returns a sponsorship readable by its owner or any admin.
func (s *Service) Get(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) (Sponsorship, error) {
	sp, err := s.find(ctx, sid)
	if err != nil {
		return Sponsorship{}, err
	}
	if err := authz.Authorize(callerRole, callerID, sp.SponsorID, authz.CapSponsorshipView); err != nil {
		return Sponsorship{}, err
	}
	return sp, nil
}

// Pause suspends an active sponsorship. Allowed for an admin or the owning
// sponsor.
func (s *Service) Pause(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) (Sponsorship, error) {
	var sp Sponsorship
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		sp, err = s.find(txCtx, sid)
		if err != nil {
			return err
		}
		if err := authz.Authorize(callerRole, callerID, sp.SponsorID, authz.CapSponsorshipPause); err != nil {
			return err
		}
		if err := sp.CanPause(); err != nil {
			return err
		}
		sp.ApplyPause(requestcontext.Now(txCtx))
		return s.update(txCtx, sp)
	})
	if err != nil {
		return Sponsorship{}, err
	}
	return sp, nil
}

// Reactivate resumes a paused sponsorship. Admin only. The child exclusivity
// is re-validated: if another ACTIVE sponsorship took the child meanwhile, the
// call fails with a conflict instead of creating a double assignment.
func (s *Service) Reactivate(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) (Sponsorship, error) {
	var sp Sponsorship
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		sp, err = s.find(txCtx, sid)
		if err != nil {
			return err
		}
		if err := authz.Authorize(callerRole, callerID, sp.SponsorID, authz.CapSponsorshipReactivate); err != nil {
			return err
		}
		if err := sp.CanReactivate(); err != nil {
			return err
		}

		if other, err := s.ledger.ActiveByChild(txCtx, sp.ChildID); err == nil && other.ID != sp.ID {
			return dErrors.New(dErrors.CodeConflict, "child has been assigned to another sponsor")
		} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
		}
		child, err := s.children.FindByID(txCtx, sp.ChildID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "child store failure")
		}
		if child.Status == children.StatusInactive {
			return dErrors.New(dErrors.CodeInvalidState, "child record has been deactivated")
		}

		sp.ApplyReactivate(requestcontext.Now(txCtx))
		if err := s.update(txCtx, sp); err != nil {
			return err
		}
		return s.children.SetStatus(txCtx, sp.ChildID, children.StatusSponsored)
	})
	if err != nil {
		return Sponsorship{}, err
	}
	return sp, nil
}

// End terminates a sponsorship for good. Allowed for an admin or the owning
// sponsor. The child returns to the available pool unless deactivateChild
// parks it in the same transaction.
func (s *Service) End(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, deactivateChild bool) (Sponsorship, error) {
	var sp Sponsorship
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		sp, err = s.find(txCtx, sid)
		if err != nil {
			return err
		}
		if err := authz.Authorize(callerRole, callerID, sp.SponsorID, authz.CapSponsorshipPause); err != nil {
			return err
		}
		if err := sp.CanEnd(); err != nil {
			return err
		}

		sp.ApplyEnd(requestcontext.Now(txCtx))
		if err := s.update(txCtx, sp); err != nil {
			return err
		}

		next := children.StatusAvailable
		if deactivateChild {
			next = children.StatusInactive
		}
		return s.children.SetStatus(txCtx, sp.ChildID, next)
	})
	if err != nil {
		return Sponsorship{}, err
	}

	if s.metrics != nil {
		s.metrics.SponsorshipsEnded.Inc()
	}
	s.notifier.Publish(ctx, notify.ToUser(sp.SponsorID,
		"Sponsorship ended",
		"Your sponsorship has ended. Thank you for your support.",
		notify.SeverityInfo,
		sp.ID.String(),
	))
	return sp, nil
}

// UpdateNotes edits the free-text notes of a non-ended sponsorship. Ownership
// is checked at the HTTP surface; the ledger guards immutability after ENDED.
func (s *Service) UpdateNotes(ctx context.Context, sid id.SponsorshipID, notes string) (Sponsorship, error) {
	notes = strings.TrimSpace(notes)
	var sp Sponsorship
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		sp, err = s.find(txCtx, sid)
		if err != nil {
			return err
		}
		if sp.Status == StatusEnded {
			return errEnded
		}
		sp.Notes = notes
		sp.UpdatedAt = requestcontext.Now(txCtx)
		return s.update(txCtx, sp)
	})
	if err != nil {
		return Sponsorship{}, err
	}
	return sp, nil
}

func (s *Service) find(ctx context.Context, sid id.SponsorshipID) (Sponsorship, error) {
	sp, err := s.ledger.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Sponsorship{}, dErrors.New(dErrors.CodeNotFound, "sponsorship does not exist")
		}
		return Sponsorship{}, dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
	}
	return sp, nil
}

func (s *Service) update(ctx context.Context, sp Sponsorship) error {
	if err := s.ledger.Update(ctx, sp); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "child has been assigned to another sponsor")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update sponsorship")
	}
	return nil
}
