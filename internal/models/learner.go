package models

import (
	"time"

	"github.com/google/uuid"
)

type Learner struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Age           *int            `json:"age"`
	LearningNeeds []string        `json:"learning_needs"`
	Settings      LearnerSettings `json:"settings"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LearnerSettings holds the accessibility preferences the client persists.
type LearnerSettings struct {
	FontSize          string `json:"font_size"`    // "default" | "large" | "extraLarge"
	LineSpacing       string `json:"line_spacing"` // "normal" | "relaxed" | "loose"
	HighContrast      bool   `json:"high_contrast"`
	AnimationsEnabled bool   `json:"animations_enabled"`
	AudioEnabled      bool   `json:"audio_enabled"`
	HapticEnabled     bool   `json:"haptic_enabled"`
}

func DefaultLearnerSettings() LearnerSettings {
	return LearnerSettings{
		FontSize:          "default",
		LineSpacing:       "normal",
		HighContrast:      false,
		AnimationsEnabled: true,
		AudioEnabled:      true,
		HapticEnabled:     true,
	}
}
