package models

// ProgressStats is derived, never persisted: it is recomputed in full from
// the activity and badge ledgers on every request.
type ProgressStats struct {
	TotalSessions    int        `json:"total_sessions"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalTimeSpent   int        `json:"total_time_spent"` // minutes, rounded
	Accuracy         int        `json:"accuracy"`         // percent, rounded
	BadgeCount       int        `json:"badge_count"`
	RecentActivities []Activity `json:"recent_activities"`
}

// RecordActivityResult is the response of activity creation: the stored
// activity plus any badge types minted by the award rules.
type RecordActivityResult struct {
	Activity      Activity `json:"activity"`
	BadgesAwarded []string `json:"badges_awarded"`
}
