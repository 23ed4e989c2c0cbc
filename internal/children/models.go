// Package children is the registry of sponsored children. A child's status is
// mutated only by the sponsorship ledger (assignment and termination) or by an
// admin deactivating the record.
package children

import (
	"strings"
	"time"

	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

// Status is the child availability state.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusSponsored Status = "SPONSORED"
	StatusInactive  Status = "INACTIVE"
)

// Child is a registered child profile.
type Child struct {
	ID        id.ChildID
	FirstName string
	LastName  string
	BirthDate time.Time
	Gender    string
	Story     string
	ImageRef  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New validates input and builds an AVAILABLE child.
func New(childID id.ChildID, firstName, lastName string, birthDate time.Time, gender, story, imageRef string, now time.Time) (Child, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return Child{}, dErrors.New(dErrors.CodeBadRequest, "child name is required")
	}
	if birthDate.IsZero() || birthDate.After(now) {
		return Child{}, dErrors.New(dErrors.CodeBadRequest, "birth date must be in the past")
	}
	return Child{
		ID:        childID,
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: birthDate,
		Gender:    gender,
		Story:     story,
		ImageRef:  imageRef,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanBeSelected reports whether the child may enter a new sponsorship.
func (c Child) CanBeSelected() error {
	switch c.Status {
	case StatusAvailable:
		return nil
	case StatusSponsored:
		return dErrors.New(dErrors.CodeInvalidState, "this child already has a sponsor")
	default:
		return dErrors.New(dErrors.CodeInvalidState, "this child is not available for sponsorship")
	}
}
