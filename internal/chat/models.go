// Package chat is the message thread between a sponsor and the admin team,
// scoped to one sponsorship, with asymmetric read tracking: each party marks
// the other party's messages as read.
package chat

import (
	"time"

	id "amparo/pkg/domain"
)

// Message is one chat message. The read flag only ever transitions false to
// true; ReadAt is set if and only if Read is true.
type Message struct {
	ID            id.MessageID
	SponsorshipID id.SponsorshipID
	SenderID      id.UserID
	SenderRole    id.Role
	Body          string
	Read          bool
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// Order selects the retrieval direction for a thread.
type Order string

const (
	// OrderAsc is the conversation view, oldest first.
	OrderAsc Order = "asc"
	// OrderDesc is the latest-first view for admin dashboards.
	OrderDesc Order = "desc"
)
