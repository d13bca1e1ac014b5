package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"neurospark-backend/internal/models"
)

type learnerStore interface {
	GetOrCreateDefault(ctx context.Context) (*models.Learner, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings models.LearnerSettings) (*models.Learner, error)
}

type LearnerHandler struct {
	learners learnerStore
}

func NewLearnerHandler(learners learnerStore) *LearnerHandler {
	return &LearnerHandler{learners: learners}
}

// Get returns the device's learner profile, creating the default one on
// first launch.
func (h *LearnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	learner, err := h.learners.GetOrCreateDefault(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, learner)
}

func (h *LearnerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid learner ID", r))
		return
	}

	var settings models.LearnerSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	learner, err := h.learners.UpdateSettings(r.Context(), id, settings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Learner not found", r))
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, learner)
}
