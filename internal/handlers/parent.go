package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"neurospark-backend/internal/middleware"
)

// ParentHandler exchanges the parent PIN for a short-lived token that
// unlocks the gated settings routes.
type ParentHandler struct {
	gate    *middleware.ParentGate
	pinHash []byte
}

func NewParentHandler(gate *middleware.ParentGate, pinHash []byte) *ParentHandler {
	return &ParentHandler{gate: gate, pinHash: pinHash}
}

func (h *ParentHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.PIN == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"pin": "PIN is required"}, r))
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.pinHash, []byte(req.PIN)); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Incorrect PIN", r))
		return
	}

	token, err := h.gate.GenerateToken()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_in": 900,
	})
}
