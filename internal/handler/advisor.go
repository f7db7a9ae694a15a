package handler

import (
	"net/http"

	"github.com/neighborjob/marketplace/internal/middleware"
	"github.com/neighborjob/marketplace/internal/model"
	"github.com/neighborjob/marketplace/internal/service"
	"github.com/neighborjob/marketplace/pkg/logger"
)

// AdvisorHandler exposes draft refinement and job advice.
type AdvisorHandler struct {
	service *service.Marketplace
	logger  *logger.Logger
}

// NewAdvisorHandler creates a new advisor handler.
func NewAdvisorHandler(svc *service.Marketplace, log *logger.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		service: svc,
		logger:  log,
	}
}

// Refine handles POST /api/v1/advisor/refine. It always answers 200; an
// unavailable advisor echoes the draft with refined=false.
func (h *AdvisorHandler) Refine(w http.ResponseWriter, r *http.Request) {
	var req model.RefineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateDescription(req.Description); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.service.RefineDraft(r.Context(), &req))
}

// Advice handles POST /api/v1/advisor/advice
func (h *AdvisorHandler) Advice(w http.ResponseWriter, r *http.Request) {
	var req model.AdviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := middleware.ValidateDescription(req.Description); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.service.Advice(r.Context(), req.Description))
}
