// Package notify publishes outbound notification events. Delivery (email,
// server-sent events) is an external collaborator consuming the outbox queue;
// this package only resolves the audience and hands events over.
package notify

import (
	"time"

	id "amparo/pkg/domain"
)

// Severity labels how a notification should be presented.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Event is an outbound notification. AllAdmins events are resolved to the
// current admin list at dispatch time, never from a cached snapshot.
type Event struct {
	Title           string      `json:"title"`
	Message         string      `json:"message"`
	Severity        Severity    `json:"severity"`
	TargetUserIDs   []id.UserID `json:"target_user_ids,omitempty"`
	AllAdmins       bool        `json:"all_admins,omitempty"`
	RelatedEntityID string      `json:"related_entity_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ToAdmins builds an all-admins event.
func ToAdmins(title, message string, severity Severity, relatedEntityID string) Event {
	return Event{Title: title, Message: message, Severity: severity, AllAdmins: true, RelatedEntityID: relatedEntityID}
}

// ToUser builds an event addressed to one user.
func ToUser(userID id.UserID, title, message string, severity Severity, relatedEntityID string) Event {
	return Event{Title: title, Message: message, Severity: severity, TargetUserIDs: []id.UserID{userID}, RelatedEntityID: relatedEntityID}
}
