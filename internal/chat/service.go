package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"amparo/internal/authz"
	"amparo/internal/notify"
	"amparo/internal/platform/metrics"
	"amparo/internal/sponsorship"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

// Ledger is the slice of the sponsorship store the chat service needs:
// resolving a thread's sponsorship to check existence and ownership.
type Ledger interface {
	FindByID(ctx context.Context, sid id.SponsorshipID) (sponsorship.Sponsorship, error)
	ListBySponsor(ctx context.Context, sponsorID id.UserID) ([]sponsorship.Sponsorship, error)
}

// Notifier publishes outbound events.
type Notifier interface {
	Publish(ctx context.Context, event notify.Event)
}

// Service owns the per-sponsorship message thread. Sponsors may only touch
// threads of sponsorships they own; admins reach every thread.
type Service struct {
	store    Store
	ledger   Ledger
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(store Store, ledger Ledger, notifier Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{store: store, ledger: ledger, notifier: notifier, metrics: m, logger: logger}
}

// Post appends a message to the thread. The sponsorship may be in any
// lifecycle state; ownership is checked for sponsor callers only.
func (s *Service) Post(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, body string) (Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, dErrors.New(dErrors.CodeBadRequest, "message body must not be empty")
	}

	sp, err := s.resolve(ctx, sid, callerID, callerRole, authz.CapChatPost)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:            id.NewMessageID(),
		SponsorshipID: sid,
		SenderID:      callerID,
		SenderRole:    callerRole,
		Body:          body,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := s.store.Append(ctx, msg); err != nil {
		return Message{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store message")
	}

	if s.metrics != nil {
		s.metrics.ChatMessagesPosted.Inc()
	}
	switch callerRole {
	case id.RoleSponsor:
		s.notifier.Publish(ctx, notify.ToAdmins(
			"New message from a godparent",
			body,
			notify.SeverityInfo,
			sid.String(),
		))
	case id.RoleAdmin:
		s.notifier.Publish(ctx, notify.ToUser(sp.SponsorID,
			"New message",
			"You have a new message about your godchild.",
			notify.SeverityInfo,
			sid.String(),
		))
	}
	return msg, nil
}

// List returns the thread in the requested order.
func (s *Service) List(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, order Order) ([]Message, error) {
	if _, err := s.resolve(ctx, sid, callerID, callerRole, authz.CapChatRead); err != nil {
		return nil, err
	}
	if order != OrderDesc {
		order = OrderAsc
	}
	msgs, err := s.store.ListBySponsorship(ctx, sid, order)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list messages")
	}
	return msgs, nil
}

// MarkRead flips every unread message from the counterpart role to read.
// Idempotent: a second call is a successful no-op.
func (s *Service) MarkRead(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) error {
	if _, err := s.resolve(ctx, sid, callerID, callerRole, authz.CapChatRead); err != nil {
		return err
	}
	flipped, err := s.store.MarkRead(ctx, sid, callerRole.Other(), requestcontext.Now(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark messages read")
	}
	if flipped > 0 {
		s.logger.InfoContext(ctx, "messages marked read",
			"sponsorship_id", sid.String(),
			"reader_role", callerRole.String(),
			"count", flipped,
		)
	}
	return nil
}

// UnreadForAdmin counts unread sponsor messages across all sponsorships.
func (s *Service) UnreadForAdmin(ctx context.Context) (int, error) {
	count, err := s.store.CountUnread(ctx, nil, id.RoleSponsor)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count unread messages")
	}
	return count, nil
}

// UnreadForSponsor counts unread admin messages across every sponsorship the
// sponsor owns, past and present. A sponsor without any has zero unread.
func (s *Service) UnreadForSponsor(ctx context.Context, sponsorID id.UserID) (int, error) {
	owned, err := s.ledger.ListBySponsor(ctx, sponsorID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
	}
	total := 0
	for _, sp := range owned {
		count, err := s.store.CountUnread(ctx, &sp.ID, id.RoleAdmin)
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count unread messages")
		}
		total += count
	}
	return total, nil
}

// resolve loads the sponsorship and runs the access gate for the capability.
func (s *Service) resolve(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, capability authz.Capability) (sponsorship.Sponsorship, error) {
	sp, err := s.ledger.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return sponsorship.Sponsorship{}, dErrors.New(dErrors.CodeNotFound, "sponsorship does not exist")
		}
		return sponsorship.Sponsorship{}, dErrors.Wrap(err, dErrors.CodeInternal, "ledger failure")
	}
	if err := authz.Authorize(callerRole, callerID, sp.SponsorID, capability); err != nil {
		return sponsorship.Sponsorship{}, err
	}
	return sp, nil
}
