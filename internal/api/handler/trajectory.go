package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/service"
)

// TrajectoryHandler handles guided visit endpoints
type TrajectoryHandler struct {
	tours *service.TourService
}

// NewTrajectoryHandler creates a new trajectory handler
func NewTrajectoryHandler(tours *service.TourService) *TrajectoryHandler {
	return &TrajectoryHandler{tours: tours}
}

// List returns every known trajectory
func (h *TrajectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.tours.List(r.Context()))
}

// Get returns one trajectory with its ordered steps
func (h *TrajectoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	trajectory, err := h.tours.Get(r.Context(), chi.URLParam(r, "trajectoryID"))
	if err != nil {
		response.FromError(w, err, 0)
		return
	}
	response.OK(w, trajectory)
}

// Preload generates the narration audio of every step ahead of a visit
func (h *TrajectoryHandler) Preload(w http.ResponseWriter, r *http.Request) {
	result, err := h.tours.Preload(r.Context(), chi.URLParam(r, "trajectoryID"))
	if err != nil {
		response.FromError(w, err, 0)
		return
	}
	response.OK(w, result)
}

// Start opens a guided visit session on the first step
func (h *TrajectoryHandler) Start(w http.ResponseWriter, r *http.Request) {
	result, err := h.tours.StartVisit(r.Context(), chi.URLParam(r, "trajectoryID"))
	if err != nil {
		response.FromError(w, err, 0)
		return
	}
	response.OK(w, result)
}
