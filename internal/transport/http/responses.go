package httptransport

import (
	"time"

	"amparo/internal/chat"
	"amparo/internal/children"
	"amparo/internal/logbook"
	"amparo/internal/sponsorship"
)

// Response DTOs are read-model projections. Persisted records never cross the
// transport boundary directly.

type sponsorshipResponse struct {
	ID        string     `json:"id"`
	SponsorID string     `json:"sponsor_id"`
	ChildID   string     `json:"child_id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

func toSponsorshipResponse(sp sponsorship.Sponsorship) sponsorshipResponse {
	return sponsorshipResponse{
		ID:        sp.ID.String(),
		SponsorID: sp.SponsorID.String(),
		ChildID:   sp.ChildID.String(),
		Status:    string(sp.Status),
		StartedAt: sp.StartedAt,
		EndedAt:   sp.EndedAt,
		Notes:     sp.Notes,
	}
}

type messageResponse struct {
	ID            string     `json:"id"`
	SponsorshipID string     `json:"sponsorship_id"`
	SenderID      string     `json:"sender_id"`
	SenderRole    string     `json:"sender_role"`
	Body          string     `json:"body"`
	Read          bool       `json:"read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toMessageResponse(msg chat.Message) messageResponse {
	return messageResponse{
		ID:            msg.ID.String(),
		SponsorshipID: msg.SponsorshipID.String(),
		SenderID:      msg.SenderID.String(),
		SenderRole:    msg.SenderRole.String(),
		Body:          msg.Body,
		Read:          msg.Read,
		ReadAt:        msg.ReadAt,
		CreatedAt:     msg.CreatedAt,
	}
}

func toMessageResponses(msgs []chat.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toMessageResponse(msg))
	}
	return out
}

type entryResponse struct {
	ID            string    `json:"id"`
	SponsorshipID string    `json:"sponsorship_id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	CreatedAt     time.Time `json:"created_at"`
}

func toEntryResponse(e logbook.Entry) entryResponse {
	return entryResponse{
		ID:            e.ID.String(),
		SponsorshipID: e.SponsorshipID.String(),
		Title:         e.Title,
		Body:          e.Body,
		Category:      string(e.Category),
		CategoryLabel: e.Category.Label(),
		CreatedAt:     e.CreatedAt,
	}
}

func toEntryResponses(entries []logbook.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

type childResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender,omitempty"`
	Story     string    `json:"story,omitempty"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Status    string    `json:"status"`
}

func toChildResponse(c children.Child) childResponse {
	return childResponse{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		BirthDate: c.BirthDate,
		Gender:    c.Gender,
		Story:     c.Story,
		ImageRef:  c.ImageRef,
		Status:    string(c.Status),
	}
}

func toChildResponses(cs []children.Child) []childResponse {
	out := make([]childResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toChildResponse(c))
	}
	return out
}

type unreadResponse struct {
	Unread int `json:"unread"`
}
