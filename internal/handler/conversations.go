package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neighborjob/marketplace/internal/middleware"
	"github.com/neighborjob/marketplace/internal/model"
	"github.com/neighborjob/marketplace/internal/service"
	"github.com/neighborjob/marketplace/pkg/logger"
)

// ConversationHandler handles conversation and message endpoints.
type ConversationHandler struct {
	service *service.Marketplace
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.Marketplace, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	convs := h.service.Conversations(ctx, middleware.GetViewerID(ctx))

	writeJSON(w, http.StatusOK, model.ListConversationsResponse{
		Conversations: convs,
		Total:         len(convs),
	})
}

// Get handles GET /api/v1/conversations/:id and makes it the active one.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.OpenConversation(ctx, middleware.GetViewerID(ctx), conversationID)
	if err != nil {
		writeServiceError(w, h.logger, "get conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.SendMessage(ctx, middleware.GetViewer(ctx), conversationID, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, "send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}
