package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is one logged attempt at a game or exercise. Rows are immutable
// after creation; the ledger is append-only per learner.
type Activity struct {
	ID           uuid.UUID      `json:"id"`
	LearnerID    uuid.UUID      `json:"learner_id"`
	ActivityType string         `json:"activity_type"` // "math" | "reading" | "writing" | "sensory" | ...
	Difficulty   int            `json:"difficulty"`
	Score        *int           `json:"score"`      // number correct; nil until the session reports a result
	TimeSpent    *int           `json:"time_spent"` // seconds
	Completed    bool           `json:"completed"`
	Data         map[string]any `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ActivityInput is the creation payload; learner_id and created_at are
// assigned by the server.
type ActivityInput struct {
	ActivityType string         `json:"activity_type"`
	Difficulty   int            `json:"difficulty"`
	Score        *int           `json:"score"`
	TimeSpent    *int           `json:"time_spent"`
	Completed    bool           `json:"completed"`
	Data         map[string]any `json:"data"`
}
