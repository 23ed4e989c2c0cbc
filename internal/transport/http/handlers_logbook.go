package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amparo/internal/logbook"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/httputil"
	"amparo/pkg/requestcontext"
)

// LogbookService is the slice of the log entry service the transport needs.
type LogbookService interface {
	Add(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, title, body string, category logbook.Category) (logbook.Entry, error)
	List(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) ([]logbook.Entry, error)
}

type LogbookHandler struct {
	logbook LogbookService
	logger  *slog.Logger
}

func NewLogbookHandler(lb LogbookService, logger *slog.Logger) *LogbookHandler {
	return &LogbookHandler{logbook: lb, logger: logger}
}

func (h *LogbookHandler) Register(r chi.Router) {
	r.Post("/sponsorships/{sponsorshipID}/log", h.handleAdd)
	r.Get("/sponsorships/{sponsorshipID}/log", h.handleList)
}

type addEntryRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

func (h *LogbookHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entry, err := h.logbook.Add(ctx, sid,
		requestcontext.UserID(ctx), requestcontext.Role(ctx),
		req.Title, req.Body, logbook.Category(req.Category),
	)
	if err != nil {
		h.logger.WarnContext(ctx, "add log entry rejected",
			"request_id", requestcontext.RequestID(ctx),
			"sponsorship_id", sid.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *LogbookHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.logbook.List(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEntryResponses(entries))
}
