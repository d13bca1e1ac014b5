package handlers

import (
	"net/http"

	"neurospark-backend/internal/services"
)

type ProgressHandler struct {
	learners    services.LearnerStore
	badges      services.BadgeStore
	progressSvc *services.ProgressService
}

func NewProgressHandler(learners services.LearnerStore, badges services.BadgeStore, progressSvc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{learners: learners, badges: badges, progressSvc: progressSvc}
}

// Stats recomputes the learner's dashboard numbers from the ledgers.
func (h *ProgressHandler) Stats(w http.ResponseWriter, r *http.Request) {
	learner, err := h.learners.GetOrCreateDefault(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	stats, err := h.progressSvc.GetProgressStats(r.Context(), learner.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Badges returns every minted badge, duplicates included.
func (h *ProgressHandler) Badges(w http.ResponseWriter, r *http.Request) {
	learner, err := h.learners.GetOrCreateDefault(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	badges, err := h.badges.ListByLearner(r.Context(), learner.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}
