package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SponsorshipsCreated    prometheus.Counter
	SponsorshipsEnded      prometheus.Counter
	ChatMessagesPosted     prometheus.Counter
	NotificationsPublished prometheus.Counter
	SelectChildConflicts   prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SponsorshipsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_sponsorships_created_total",
			Help: "Total number of sponsorships created",
		}),
		SponsorshipsEnded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_sponsorships_ended_total",
			Help: "Total number of sponsorships ended",
		}),
		ChatMessagesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_chat_messages_posted_total",
			Help: "Total number of chat messages posted",
		}),
		NotificationsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_notifications_published_total",
			Help: "Total number of notification events pushed to the outbox",
		}),
		SelectChildConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amparo_select_child_conflicts_total",
			Help: "Total number of child selections lost to a concurrent assignment",
		}),
	}
}
