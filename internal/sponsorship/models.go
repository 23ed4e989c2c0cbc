// Package sponsorship is the matching and lifecycle ledger. It owns the
// one-to-one-at-a-time pairing between a sponsor and a child and the
// ACTIVE/PAUSED/ENDED state machine, including the exclusivity invariants:
// at most one ACTIVE sponsorship per sponsor and per child.
package sponsorship

import (
	"time"

	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

// Status is the sponsorship lifecycle state.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusPaused Status = "PAUSED"
	StatusEnded  Status = "ENDED"
)

// Sponsorship pairs one sponsor with one child. Sponsor and child references
// are immutable after creation; rows are never deleted so the audit trail
// stays complete.
type Sponsorship struct {
	ID        id.SponsorshipID
	SponsorID id.UserID
	ChildID   id.ChildID
	Status    Status
	StartedAt time.Time
	EndedAt   *time.Time
	Notes     string
	UpdatedAt time.Time
}

// New builds an ACTIVE sponsorship starting now.
func New(sid id.SponsorshipID, sponsorID id.UserID, childID id.ChildID, now time.Time) Sponsorship {
	return Sponsorship{
		ID:        sid,
		SponsorID: sponsorID,
		ChildID:   childID,
		Status:    StatusActive,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// IsActive reports whether the pairing is currently in force.
func (s Sponsorship) IsActive() bool { return s.Status == StatusActive }

var errEnded = dErrors.New(dErrors.CodeInvalidState, "sponsorship has ended and cannot change")

// CanPause validates the ACTIVE → PAUSED transition.
func (s Sponsorship) CanPause() error {
	switch s.Status {
	case StatusActive:
		return nil
	case StatusPaused:
		return dErrors.New(dErrors.CodeInvalidState, "sponsorship is already paused")
	default:
		return errEnded
	}
}

// CanReactivate validates the PAUSED → ACTIVE transition.
func (s Sponsorship) CanReactivate() error {
	switch s.Status {
	case StatusPaused:
		return nil
	case StatusActive:
		return dErrors.New(dErrors.CodeInvalidState, "sponsorship is already active")
	default:
		return errEnded
	}
}

// CanEnd validates the ACTIVE|PAUSED → ENDED transition.
func (s Sponsorship) CanEnd() error {
	if s.Status == StatusEnded {
		return errEnded
	}
	return nil
}

// ApplyPause records the pause. Caller must have checked CanPause.
func (s *Sponsorship) ApplyPause(now time.Time) {
	s.Status = StatusPaused
	s.UpdatedAt = now
}

// ApplyReactivate records the resume. Caller must have checked CanReactivate.
func (s *Sponsorship) ApplyReactivate(now time.Time) {
	s.Status = StatusActive
	s.UpdatedAt = now
}

// ApplyEnd records the terminal transition and stamps the end timestamp,
// which is set if and only if the status is ENDED.
func (s *Sponsorship) ApplyEnd(now time.Time) {
	s.Status = StatusEnded
	s.EndedAt = &now
	s.UpdatedAt = now
}
