package logbook

import (
	"context"
	"errors"
	"log/slog"

	"amparo/internal/authz"
	"amparo/internal/notify"
	"amparo/internal/sponsorship"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

// Ledger resolves a sponsorship for existence and ownership checks.
type Ledger interface {
	FindByID(ctx context.Context, sid id.SponsorshipID) (sponsorship.Sponsorship, error)
}

// Notifier publishes outbound events.
type Notifier interface {
	Publish(ctx context.Context, event notify.Event)
}

// Service owns the admin-authored log. Add is admin-only; List enforces
// ownership for sponsor callers.
type Service struct {
	store    Store
	ledger   Ledger
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store Store, ledger Ledger, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, ledger: ledger, notifier: notifier, logger: logger}
}

// Add appends an entry authored by an admin. Sponsor callers are rejected by
// the gate before any validation: authoring is a capability, not an input.
func (s *Service) Add(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, title, body string, category Category) (Entry, error) {
	sp, err := s.resolve(ctx, sid)
	if err != nil {
		return Entry{}, err
	}
	if err := authz.Authorize(callerRole, callerID, sp.SponsorID, authz.CapLogWrite); err != nil {
		return Entry{}, err
	}

	entry, err := NewEntry(id.NewEntryID(), sid, callerID, title, body, category, requestcontext.Now(ctx))
	if err != nil {
		return Entry{}, err
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store log entry")
	}

	s.notifier.Publish(ctx, notify.ToUser(sp.SponsorID,
		"New log entry",
		"There is news about your godchild: "+entry.Title,
		notify.SeverityInfo,
		sid.String(),
	))
	s.logger.InfoContext(ctx, "log entry added",
		"sponsorship_id", sid.String(),
		"category", string(entry.Category),
	)
	return entry, nil
}

// List returns entries newest-first. Sponsor callers must own the sponsorship.
func (s *Service) List(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) ([]Entry, error) {
	sp, err := s.resolve(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(callerRole, callerID, sp.SponsorID, authz.CapLogRead); err != nil {
		return nil, err
	}

	entries, err := s.store.ListBySponsorship(ctx, sid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list log entries")
	}
	return entries, nil
}

func (s *Service) resolve(ctx context.Context, sid id.SponsorshipID) (sponsorship.Sponsorship, error) {
	sp, err := s.ledger.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return sponsorship.Sponsorship{}, dErrors.New(dErrors.CodeNotFound, "sponsorship does not exist")
		}
		return sponsorship.Sponsorship{}, dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
	}
	return sp, nil
}
