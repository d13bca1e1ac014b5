package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"

	"neurospark-backend/internal/models"
	"neurospark-backend/internal/services"
	"neurospark-backend/internal/worker"
)

type AIHandler struct {
	gemini     *services.GeminiService
	redis      *redis.Client
	learners   services.LearnerStore
	activities services.ActivityStore
}

func NewAIHandler(gemini *services.GeminiService, redisClient *redis.Client, learners services.LearnerStore, activities services.ActivityStore) *AIHandler {
	return &AIHandler{gemini: gemini, redis: redisClient, learners: learners, activities: activities}
}

// Feedback returns an encouraging one-liner for a finished activity. The
// service degrades to a canned phrase on any model failure, so this never
// errors.
func (h *AIHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.ActivityType == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"activity_type": "Activity type is required"}, r))
		return
	}

	feedback := h.gemini.GenerateFeedback(r.Context(), req.ActivityType, req.Score, req.TotalQuestions)
	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

// Content serves a generated question or reading passage, preferring the
// prefetch cache so the child is never kept waiting on the model.
func (h *AIHandler) Content(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fieldErrors := make(map[string]string)
	if req.ContentType != "math" && req.ContentType != "reading" {
		fieldErrors["content_type"] = "Content type must be \"math\" or \"reading\""
	}
	if req.Difficulty < 1 || req.Difficulty > 5 {
		fieldErrors["difficulty"] = "Difficulty must be between 1 and 5"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fieldErrors, r))
		return
	}

	// Refill the slot we are about to drain either way.
	defer func() {
		if err := worker.EnqueuePrefetch(r.Context(), h.redis, req.ContentType, req.Difficulty); err != nil {
			log.Printf("failed to enqueue content prefetch: %v", err)
		}
	}()

	cached, err := h.redis.LPop(r.Context(), worker.CacheKey(req.ContentType, req.Difficulty)).Result()
	if err == nil && cached != "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"content": json.RawMessage(cached),
			"cached":  true,
		})
		return
	}

	content, err := h.gemini.GenerateContent(r.Context(), req.ContentType, req.Difficulty)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"content": content,
		"cached":  false,
	})
}

// Summary generates a parent-facing progress recap from recent activity.
func (h *AIHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Timeframe == "" {
		req.Timeframe = "week"
	}
	if req.Timeframe != "week" && req.Timeframe != "month" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"timeframe": "Timeframe must be \"week\" or \"month\""}, r))
		return
	}

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
	if len(activities) > 20 {
		activities = activities[:20]
	}

	summary := h.gemini.GenerateProgressSummary(r.Context(), activities, req.Timeframe)
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
