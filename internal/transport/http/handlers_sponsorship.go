package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amparo/internal/sponsorship"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/httputil"
	"amparo/pkg/requestcontext"
)

// SponsorshipService is the slice of the ledger the transport needs.
type SponsorshipService interface {
	SelectChild(ctx context.Context, sponsorID id.UserID, childID id.ChildID) (sponsorship.Sponsorship, error)
	ActiveForSponsor(ctx context.Context, sponsorID id.UserID) (*sponsorship.Sponsorship, error)
	Get(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) (sponsorship.Sponsorship, error)
	Pause(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) (sponsorship.Sponsorship, error)
	Reactivate(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) (sponsorship.Sponsorship, error)
	End(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, deactivateChild bool) (sponsorship.Sponsorship, error)
	UpdateNotes(ctx context.Context, sid id.SponsorshipID, notes string) (sponsorship.Sponsorship, error)
}

// SponsorshipHandler maps the ledger operations onto HTTP routes.
type SponsorshipHandler struct {
	ledger SponsorshipService
	logger *slog.Logger
}

func NewSponsorshipHandler(ledger SponsorshipService, logger *slog.Logger) *SponsorshipHandler {
	return &SponsorshipHandler{ledger: ledger, logger: logger}
}

// Register mounts the sponsorship routes. Callers are already authenticated by
// the router's middleware chain.
func (h *SponsorshipHandler) Register(r chi.Router) {
	r.Post("/sponsorships", h.handleSelectChild)
	r.Get("/sponsorships/active", h.handleActive)
	r.Get("/sponsorships/{sponsorshipID}", h.handleGet)
	r.Post("/sponsorships/{sponsorshipID}/pause", h.handlePause)
	r.Post("/sponsorships/{sponsorshipID}/reactivate", h.handleReactivate)
	r.Post("/sponsorships/{sponsorshipID}/end", h.handleEnd)
	r.Patch("/sponsorships/{sponsorshipID}/notes", h.handleUpdateNotes)
}

type selectChildRequest struct {
	ChildID string `json:"child_id"`
}

func (h *SponsorshipHandler) handleSelectChild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req selectChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	childID, err := id.ParseChildID(req.ChildID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sp, err := h.ledger.SelectChild(ctx, requestcontext.UserID(ctx), childID)
	if err != nil {
		h.logger.WarnContext(ctx, "select child rejected",
			"request_id", requestcontext.RequestID(ctx),
			"child_id", childID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSponsorshipResponse(sp))
}

// handleActive returns the caller's current ACTIVE sponsorship, or 204 when
// none exists. Absence is an empty result, not an error.
func (h *SponsorshipHandler) handleActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sp, err := h.ledger.ActiveForSponsor(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if sp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSponsorshipResponse(*sp))
}

func (h *SponsorshipHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sp, err := h.ledger.Get(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSponsorshipResponse(sp))
}

func (h *SponsorshipHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "pause", h.ledger.Pause)
}

func (h *SponsorshipHandler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reactivate", h.ledger.Reactivate)
}

type endRequest struct {
	DeactivateChild bool `json:"deactivate_child"`
}

func (h *SponsorshipHandler) handleEnd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The body is optional; an absent body means the child returns to the
	// available pool.
	var req endRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sp, err := h.ledger.End(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx), req.DeactivateChild)
	if err != nil {
		h.logger.WarnContext(ctx, "end sponsorship rejected",
			"request_id", requestcontext.RequestID(ctx),
			"sponsorship_id", sid.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSponsorshipResponse(sp))
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *SponsorshipHandler) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	// Ownership gate first: Get runs the same access check as any read.
	if _, err := h.ledger.Get(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sp, err := h.ledger.UpdateNotes(ctx, sid, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSponsorshipResponse(sp))
}

type transitionFn func(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) (sponsorship.Sponsorship, error)

func (h *SponsorshipHandler) transition(w http.ResponseWriter, r *http.Request, name string, fn transitionFn) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sp, err := fn(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "sponsorship transition rejected",
			"request_id", requestcontext.RequestID(ctx),
			"sponsorship_id", sid.String(),
			"transition", name,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSponsorshipResponse(sp))
}
