package logbook

import (
	"context"

	id "amparo/pkg/domain"
)

type Store interface {
	Append(ctx context.Context, entry Entry) error
	// ListBySponsorship returns entries newest-first.
	ListBySponsorship(ctx context.Context, sid id.SponsorshipID) ([]Entry, error)
}
