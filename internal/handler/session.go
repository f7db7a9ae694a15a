package handler

import (
	"net/http"

	"github.com/neighborjob/marketplace/internal/middleware"
	"github.com/neighborjob/marketplace/internal/model"
	"github.com/neighborjob/marketplace/internal/service"
	"github.com/neighborjob/marketplace/pkg/logger"
)

// SessionHandler handles the viewer's session state.
type SessionHandler struct {
	service *service.Marketplace
	logger  *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(svc *service.Marketplace, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: svc,
		logger:  log,
	}
}

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, h.service.Session(ctx, middleware.GetViewerID(ctx)))
}

// SetLocation handles PUT /api/v1/session/location
func (h *SessionHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetViewerID(ctx)

	var loc model.Coordinate
	if !decodeJSON(w, r, &loc) {
		return
	}

	if err := h.service.SetLocation(ctx, viewerID, loc); err != nil {
		writeServiceError(w, h.logger, "set location", err)
		return
	}

	writeJSON(w, http.StatusOK, h.service.Session(ctx, viewerID))
}

// SetMode handles PUT /api/v1/session/mode
func (h *SessionHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetViewerID(ctx)

	var req model.SetModeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.SetMode(ctx, viewerID, req.Mode); err != nil {
		writeServiceError(w, h.logger, "set mode", err)
		return
	}

	writeJSON(w, http.StatusOK, h.service.Session(ctx, viewerID))
}
