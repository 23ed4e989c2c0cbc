package notify

import (
	"context"
	"log/slog"

	"amparo/internal/platform/metrics"
	"amparo/internal/users"
	id "amparo/pkg/domain"
	"amparo/pkg/requestcontext"
)

// Sink accepts resolved notification events for delivery.
type Sink interface {
	Push(ctx context.Context, event Event) error
}

// AdminDirectory looks up the current admin accounts. Queried per event so a
// freshly added or removed admin is reflected immediately.
type AdminDirectory interface {
	ListByRole(ctx context.Context, role id.Role) ([]users.User, error)
}

// Publisher resolves event audiences and pushes them to the sink. Failures are
// logged, not propagated: a lost notification must never roll back the domain
// operation that triggered it.
type Publisher struct {
	admins  AdminDirectory
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewPublisher builds a publisher. metrics may be nil in tests.
func NewPublisher(admins AdminDirectory, sink Sink, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{admins: admins, sink: sink, logger: logger, metrics: m}
}

// Publish resolves the audience and hands the event to the sink.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = requestcontext.Now(ctx)
	}

	if event.AllAdmins {
		adminAccounts, err := p.admins.ListByRole(ctx, id.RoleAdmin)
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to resolve admin audience",
				"error", err,
				"title", event.Title,
			)
			return
		}
		event.TargetUserIDs = event.TargetUserIDs[:0]
		for _, admin := range adminAccounts {
			event.TargetUserIDs = append(event.TargetUserIDs, admin.ID)
		}
	}

	if len(event.TargetUserIDs) == 0 {
		p.logger.WarnContext(ctx, "notification has no recipients, dropping",
			"title", event.Title,
		)
		return
	}

	if err := p.sink.Push(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to push notification",
			"error", err,
			"title", event.Title,
		)
		return
	}
	if p.metrics != nil {
		p.metrics.NotificationsPublished.Inc()
	}
}
