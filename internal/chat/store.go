package chat

import (
	"context"
	"time"

	id "amparo/pkg/domain"
)

type Store interface {
	Append(ctx context.Context, msg Message) error
	ListBySponsorship(ctx context.Context, sid id.SponsorshipID, order Order) ([]Message, error)
	// MarkRead flips every unread message sent by senderRole within the
	// sponsorship to read and stamps readAt. Returns the number of messages
	// flipped; zero is a successful no-op.
	MarkRead(ctx context.Context, sid id.SponsorshipID, senderRole id.Role, readAt time.Time) (int, error)
	// CountUnreadBySender counts unread messages sent by senderRole across all
	// sponsorships (admin dashboard) when sid is nil, or within one.
	CountUnread(ctx context.Context, sid *id.SponsorshipID, senderRole id.Role) (int, error)
}
