// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/neighborjob/marketplace/internal/middleware"
	"github.com/neighborjob/marketplace/internal/model"
	"github.com/neighborjob/marketplace/internal/service"
	"github.com/neighborjob/marketplace/pkg/logger"
)

// JobHandler handles job endpoints.
type JobHandler struct {
	service *service.Marketplace
	logger  *logger.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(svc *service.Marketplace, log *logger.Logger) *JobHandler {
	return &JobHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/v1/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetViewerID(ctx)
	q := r.URL.Query()

	search := q.Get("q")
	if err := middleware.ValidateSearch(search); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if lat, lng := q.Get("lat"), q.Get("lng"); lat != "" || lng != "" {
		loc, ok := parseCoordinate(lat, lng)
		if !ok {
			writeError(w, http.StatusBadRequest, "lat and lng must both be numbers")
			return
		}
		if err := h.service.SetLocation(ctx, viewerID, loc); err != nil {
			writeServiceError(w, h.logger, "set location", err)
			return
		}
	}

	jobs, err := h.service.Jobs(ctx, viewerID, service.JobFilter{
		Search:  search,
		Urgency: model.Urgency(q.Get("urgency")),
		Mode:    model.Mode(q.Get("mode")),
	})
	if err != nil {
		writeServiceError(w, h.logger, "list jobs", err)
		return
	}

	writeJSON(w, http.StatusOK, model.ListJobsResponse{
		Jobs:  jobs,
		Total: len(jobs),
	})
}

// Post handles POST /api/v1/jobs
func (h *JobHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := middleware.GetViewer(ctx)

	var req model.PostJobRequest
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

	job, err := h.service.PostJob(ctx, viewer, &req)
	if err != nil {
		writeServiceError(w, h.logger, "post job", err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// Get handles GET /api/v1/jobs/:id
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	if err := middleware.ValidateJobID(jobID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.service.Job(ctx, middleware.GetViewerID(ctx), jobID)
	if err != nil {
		writeServiceError(w, h.logger, "get job", err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// StartConversation handles POST /api/v1/jobs/:id/conversation
func (h *JobHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	if err := middleware.ValidateJobID(jobID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.StartConversation(ctx, middleware.GetViewer(ctx), jobID)
	if err != nil {
		writeServiceError(w, h.logger, "start conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// Advice handles GET /api/v1/jobs/:id/advice
func (h *JobHandler) Advice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "id")

	if err := middleware.ValidateJobID(jobID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.AdviceForJob(ctx, jobID)
	if err != nil {
		writeServiceError(w, h.logger, "get advice", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseCoordinate(lat, lng string) (model.Coordinate, bool) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return model.Coordinate{}, false
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Latitude: la, Longitude: ln}, true
}
