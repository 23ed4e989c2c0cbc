// Package authz is the cross-cutting access control gate. Every sponsor-facing
// operation on sponsorships, chat, and log entries passes through Authorize
// before touching data; admin callers skip ownership but still need the admin
// role for admin-only capabilities.
package authz

import (
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

// Capability names an action a caller wants to perform on a sponsorship.
type Capability string

const (
	// CapSponsorshipView covers reading a sponsorship and its active lookup.
	CapSponsorshipView Capability = "sponsorship:view"
	// CapSponsorshipPause covers pausing and ending a pairing.
	CapSponsorshipPause Capability = "sponsorship:pause"
	// CapSponsorshipReactivate resumes a paused pairing. Admin only: paused
	// pairings are reviewed by staff before resuming.
	CapSponsorshipReactivate Capability = "sponsorship:reactivate"
	// CapChatPost and CapChatRead cover the message thread.
	CapChatPost Capability = "chat:post"
	CapChatRead Capability = "chat:read"
	// CapLogWrite is admin only; sponsors never author log entries.
	CapLogWrite Capability = "log:write"
	// CapLogRead allows the owning sponsor and any admin.
	CapLogRead Capability = "log:read"
)

// adminOnly lists capabilities no sponsor holds, owner or not.
var adminOnly = map[Capability]bool{
	CapSponsorshipReactivate: true,
	CapLogWrite:              true,
}

// errDenied is deliberately generic: an unauthorized caller learns nothing
// about the resource beyond the denial itself.
var errDenied = dErrors.New(dErrors.CodeForbidden, "access denied")

// RequireAdmin gates operations with no owning sponsor, like child registry
// management.
func RequireAdmin(role id.Role) error {
	if role != id.RoleAdmin {
		return errDenied
	}
	return nil
}

// Authorize decides whether a caller may exercise a capability on a resource
// owned by ownerID. Admins hold every capability; sponsors hold non-admin
// capabilities only on sponsorships they own.
func Authorize(role id.Role, callerID, ownerID id.UserID, capability Capability) error {
	switch role {
	case id.RoleAdmin:
		return nil
	case id.RoleSponsor:
		if adminOnly[capability] {
			return errDenied
		}
		if callerID.IsNil() || callerID != ownerID {
			return errDenied
		}
		return nil
	default:
		return errDenied
	}
}
