// Package logbook holds admin-authored progress notes attached to a
// sponsorship. Sponsors read, admins write; the asymmetry is a policy, not a
// validation detail, and is enforced by the access gate.
package logbook

import (
	"strings"
	"time"

	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

// Category tags a log entry. Display labels are pure data.
type Category string

const (
	CategoryHealth    Category = "health"
	CategorySchool    Category = "school"
	CategoryFamily    Category = "family"
	CategoryGeneral   Category = "general"
	CategoryMilestone Category = "milestone"
)

var categoryLabels = map[Category]string{
	CategoryHealth:    "Health",
	CategorySchool:    "School",
	CategoryFamily:    "Family",
	CategoryGeneral:   "General",
	CategoryMilestone: "Milestone",
}

// ParseCategory validates a category tag.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryLabels[c]; !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown log category")
	}
	return c, nil
}

// Label returns the display name of the category.
func (c Category) Label() string { return categoryLabels[c] }

// Entry is one progress note. Entries are append-only and always authored by
// an admin.
type Entry struct {
	ID            id.EntryID
	SponsorshipID id.SponsorshipID
	AuthorID      id.UserID
	Title         string
	Body          string
	Category      Category
	CreatedAt     time.Time
}

// NewEntry validates input and builds an entry.
func NewEntry(eid id.EntryID, sid id.SponsorshipID, authorID id.UserID, title, body string, category Category, now time.Time) (Entry, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return Entry{}, dErrors.New(dErrors.CodeBadRequest, "entry title is required")
	}
	if body == "" {
		return Entry{}, dErrors.New(dErrors.CodeBadRequest, "entry body is required")
	}
	if _, ok := categoryLabels[category]; !ok {
		return Entry{}, dErrors.New(dErrors.CodeBadRequest, "unknown log category")
	}
	return Entry{
		ID:            eid,
		SponsorshipID: sid,
		AuthorID:      authorID,
		Title:         title,
		Body:          body,
		Category:      category,
		CreatedAt:     now,
	}, nil
}
