package handlers

import (
	"encoding/json"
	"net/http"

	"neurospark-backend/internal/models"
	"neurospark-backend/internal/services"
)

type ActivityHandler struct {
	learners    services.LearnerStore
	activities  services.ActivityStore
	progressSvc *services.ProgressService
}

func NewActivityHandler(learners services.LearnerStore, activities services.ActivityStore, progressSvc *services.ProgressService) *ActivityHandler {
	return &ActivityHandler{learners: learners, activities: activities, progressSvc: progressSvc}
}

// List returns the learner's full activity ledger, newest first.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	learner, err := h.learners.GetOrCreateDefault(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	activities, err := h.activities.ListByLearner(r.Context(), learner.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
}

// Create records an activity and returns it together with any badges the
// submission earned.
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ActivityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	learner, err := h.learners.GetOrCreateDefault(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.progressSvc.RecordActivityAndEvaluateBadges(r.Context(), learner.ID, input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
