package progress

import (
	"time"

	"neurospark-backend/internal/models"
)

// PerfectScoreQuestions is the assumed question count per game session.
// Every activity type is treated as a five-question session regardless of
// what the session actually contained; the value is not derived from the
// activity payload. Known simplification carried over from the client.
const PerfectScoreQuestions = 5

// EvaluateBadges decides which badges a freshly recorded activity earns.
// The ledger must already include the new activity. Rules run in order and
// independently; none checks for a pre-existing badge of its type, so a
// learner who re-qualifies (say, a second 3-day streak) is minted a
// duplicate row.
//
// No badges are evaluated unless the new activity is completed and scored.
func EvaluateBadges(ledger []models.Activity, created models.Activity, now time.Time) []string {
	if !created.Completed || created.Score == nil {
		return nil
	}

	var awarded []string

	completedCount := 0
	for _, a := range ledger {
		if a.Completed {
			completedCount++
		}
	}

	if completedCount == 1 {
		awarded = append(awarded, models.BadgeFirstSession)
	}

	if *created.Score == PerfectScoreQuestions {
		awarded = append(awarded, models.BadgePerfectScore)
	}

	if CurrentStreak(ledger, now) == 3 {
		awarded = append(awarded, models.BadgeStreak3)
	}

	return awarded
}
