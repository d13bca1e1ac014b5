package models

import (
	"time"

	"github.com/google/uuid"
)

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type BadgeEarnedEvent struct {
	LearnerID uuid.UUID `json:"learner_id"`
	BadgeType string    `json:"badge_type"`
	EarnedAt  time.Time `json:"earned_at"`
}

type ActivityRecordedEvent struct {
	LearnerID     uuid.UUID `json:"learner_id"`
	ActivityID    uuid.UUID `json:"activity_id"`
	ActivityType  string    `json:"activity_type"`
	CurrentStreak int       `json:"current_streak"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
