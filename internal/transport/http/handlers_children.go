package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"amparo/internal/authz"
	"amparo/internal/children"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/httputil"
	"amparo/pkg/requestcontext"
)

// ChildrenService is the slice of the child registry the transport needs.
type ChildrenService interface {
	Create(ctx context.Context, firstName, lastName string, birthDate time.Time, gender, story, imageRef string) (children.Child, error)
	Get(ctx context.Context, childID id.ChildID) (children.Child, error)
	ListAvailable(ctx context.Context) ([]children.Child, error)
	Deactivate(ctx context.Context, childID id.ChildID) error
	Reactivate(ctx context.Context, childID id.ChildID) error
}

type ChildrenHandler struct {
	children ChildrenService
	logger   *slog.Logger
}

func NewChildrenHandler(cs ChildrenService, logger *slog.Logger) *ChildrenHandler {
	return &ChildrenHandler{children: cs, logger: logger}
}

// Register mounts the registry routes. Reads are open to any authenticated
// caller so sponsors can browse the available pool; writes are admin only.
func (h *ChildrenHandler) Register(r chi.Router) {
	r.Get("/children", h.handleListAvailable)
	r.Get("/children/{childID}", h.handleGet)
	r.Post("/children", h.handleCreate)
	r.Post("/children/{childID}/deactivate", h.handleDeactivate)
	r.Post("/children/{childID}/reactivate", h.handleReactivate)
}

type createChildRequest struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender"`
	Story     string    `json:"story"`
	ImageRef  string    `json:"image_ref"`
}

func (h *ChildrenHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := authz.RequireAdmin(requestcontext.Role(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req createChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	child, err := h.children.Create(ctx, req.FirstName, req.LastName, req.BirthDate, req.Gender, req.Story, req.ImageRef)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "child registered",
		"request_id", requestcontext.RequestID(ctx),
		"child_id", child.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toChildResponse(child))
}

func (h *ChildrenHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	childID, err := id.ParseChildID(chi.URLParam(r, "childID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	child, err := h.children.Get(ctx, childID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toChildResponse(child))
}

func (h *ChildrenHandler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cs, err := h.children.ListAvailable(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toChildResponses(cs))
}

func (h *ChildrenHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.children.Deactivate)
}

func (h *ChildrenHandler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.children.Reactivate)
}

func (h *ChildrenHandler) statusChange(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, childID id.ChildID) error) {
	ctx := r.Context()
	if err := authz.RequireAdmin(requestcontext.Role(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	childID, err := id.ParseChildID(chi.URLParam(r, "childID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := fn(ctx, childID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
