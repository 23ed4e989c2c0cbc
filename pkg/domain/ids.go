// Package domain holds shared domain primitives: typed identifiers and the
// caller role union. Typed IDs prevent cross-entity assignment at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "amparo/pkg/domain-errors"
)

type (
	// UserID identifies a user account (sponsor or admin).
	UserID uuid.UUID
	// ChildID identifies a registered child.
	ChildID uuid.UUID
	// SponsorshipID identifies a sponsor/child pairing.
	SponsorshipID uuid.UUID
	// MessageID identifies a chat message.
	MessageID uuid.UUID
	// EntryID identifies a log entry.
	EntryID uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" is required")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" is not a valid id")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" must not be the nil id")
	}
	return id, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user id")
	return UserID(id), err
}

// ParseChildID validates and converts a string into a ChildID.
func ParseChildID(s string) (ChildID, error) {
	id, err := parseUUID(s, "child id")
	return ChildID(id), err
}

// ParseSponsorshipID validates and converts a string into a SponsorshipID.
func ParseSponsorshipID(s string) (SponsorshipID, error) {
	id, err := parseUUID(s, "sponsorship id")
	return SponsorshipID(id), err
}

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ChildID) String() string       { return uuid.UUID(id).String() }
func (id SponsorshipID) String() string { return uuid.UUID(id).String() }
func (id MessageID) String() string     { return uuid.UUID(id).String() }
func (id EntryID) String() string       { return uuid.UUID(id).String() }

// MarshalText keeps UserIDs as canonical UUID strings when they appear in
// JSON payloads, like notification events.
func (id UserID) MarshalText() ([]byte, error) { return []byte(uuid.UUID(id).String()), nil }

// UnmarshalText parses a canonical UUID string.
func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ChildID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SponsorshipID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewChildID returns a fresh random ChildID.
func NewChildID() ChildID { return ChildID(uuid.New()) }

// NewSponsorshipID returns a fresh random SponsorshipID.
func NewSponsorshipID() SponsorshipID { return SponsorshipID(uuid.New()) }

// NewMessageID returns a fresh random MessageID.
func NewMessageID() MessageID { return MessageID(uuid.New()) }

// NewEntryID returns a fresh random EntryID.
func NewEntryID() EntryID { return EntryID(uuid.New()) }
