package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amparo/internal/chat"
	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/httputil"
	"amparo/pkg/requestcontext"
)

// ChatService is the slice of the chat service the transport needs.
type ChatService interface {
	Post(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, body string) (chat.Message, error)
	List(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role, order chat.Order) ([]chat.Message, error)
	MarkRead(ctx context.Context, sid id.SponsorshipID, callerID id.UserID, callerRole id.Role) error
	UnreadForAdmin(ctx context.Context) (int, error)
	UnreadForSponsor(ctx context.Context, sponsorID id.UserID) (int, error)
}

type ChatHandler struct {
	chat   ChatService
	logger *slog.Logger
}

func NewChatHandler(chat ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

func (h *ChatHandler) Register(r chi.Router) {
	r.Post("/sponsorships/{sponsorshipID}/messages", h.handlePost)
	r.Get("/sponsorships/{sponsorshipID}/messages", h.handleList)
	r.Post("/sponsorships/{sponsorshipID}/messages/read", h.handleMarkRead)
	r.Get("/messages/unread", h.handleUnread)
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *ChatHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	msg, err := h.chat.Post(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx), req.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "post message rejected",
			"request_id", requestcontext.RequestID(ctx),
			"sponsorship_id", sid.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *ChatHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	order := chat.OrderAsc
	if r.URL.Query().Get("order") == "desc" {
		order = chat.OrderDesc
	}

	msgs, err := h.chat.List(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx), order)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMessageResponses(msgs))
}

func (h *ChatHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := id.ParseSponsorshipID(chi.URLParam(r, "sponsorshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.chat.MarkRead(ctx, sid, requestcontext.UserID(ctx), requestcontext.Role(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUnread branches on the caller's role: admins see the global unread
// sponsor-message count, sponsors see unread admin messages across their own
// sponsorships.
func (h *ChatHandler) handleUnread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		count int
		err   error
	)
	switch requestcontext.Role(ctx) {
	case id.RoleAdmin:
		count, err = h.chat.UnreadForAdmin(ctx)
	default:
		count, err = h.chat.UnreadForSponsor(ctx, requestcontext.UserID(ctx))
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, unreadResponse{Unread: count})
}
