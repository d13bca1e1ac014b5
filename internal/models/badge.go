package models

import (
	"time"

	"github.com/google/uuid"
)

// Badge types minted by the award rules.
const (
	BadgeFirstSession = "first-session"
	BadgePerfectScore = "perfect-score"
	BadgeStreak3      = "streak-3"
)

type Badge struct {
	ID        uuid.UUID `json:"id"`
	LearnerID uuid.UUID `json:"learner_id"`
	BadgeType string    `json:"badge_type"`
	EarnedAt  time.Time `json:"earned_at"`
}
