// Package progress computes aggregate learning statistics and badge awards
// over a learner's activity ledger. Everything here is pure: callers pass
// the ledger and the evaluation time, nothing reads the wall clock.
//
// Streak arithmetic is timezone sensitive. All timestamps are truncated to
// calendar days in the location of the supplied "now", so a deployment must
// evaluate with a single consistent zone.
package progress

import (
	"math"
	"sort"
	"time"

	"neurospark-backend/internal/models"
)

// ComputeStats recomputes the full ProgressStats from the activity and
// badge ledgers. Nothing is cached; every call walks the whole ledger.
func ComputeStats(activities []models.Activity, badges []models.Badge, now time.Time) models.ProgressStats {
	byNewest := sortedByCreatedDesc(activities)

	totalSessions := 0
	totalSeconds := 0
	answered := 0
	correct := 0

	for _, a := range activities {
		if a.Completed {
			totalSessions++
		}
		if a.TimeSpent != nil {
			totalSeconds += *a.TimeSpent
		}
		if a.Score != nil {
			answered++
			// Any score above zero counts as a correct session, even a
			// partial one. This matches the shipped behavior; accuracy is
			// not normalized against the question count.
			if *a.Score > 0 {
				correct++
			}
		}
	}

	accuracy := 0
	if answered > 0 {
		accuracy = int(math.Round(float64(correct) / float64(answered) * 100))
	}

	recent := byNewest
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return models.ProgressStats{
		TotalSessions:    totalSessions,
		CurrentStreak:    CurrentStreak(activities, now),
		LongestStreak:    LongestStreak(activities, now.Location()),
		TotalTimeSpent:   int(math.Round(float64(totalSeconds) / 60)),
		Accuracy:         accuracy,
		BadgeCount:       len(badges),
		RecentActivities: recent,
	}
}

// CurrentStreak counts consecutive calendar days, ending today or
// yesterday, that contain at least one completed activity. Multiple
// sessions on one day count once. Returns 0 when the most recent completed
// activity is two or more days old.
func CurrentStreak(activities []models.Activity, now time.Time) int {
	completed := completedByCreatedDesc(activities)
	if len(completed) == 0 {
		return 0
	}

	loc := now.Location()
	today := truncateToDay(now, loc)
	latestDay := truncateToDay(completed[0].CreatedAt, loc)

	// Streak broken: latest activity is neither today nor yesterday.
	if latestDay.Before(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	cursor := latestDay

	for _, a := range completed[1:] {
		day := truncateToDay(a.CreatedAt, loc)
		prev := cursor.AddDate(0, 0, -1)

		if day.Equal(prev) {
			streak++
			cursor = day
		} else if day.Before(prev) {
			break
		}
		// day == cursor: a repeat of an already-counted day, skipped.
	}

	return streak
}

// LongestStreak is the longest run of consecutive calendar days with at
// least one completed activity, anywhere in the ledger.
func LongestStreak(activities []models.Activity, loc *time.Location) int {
	completed := completedByCreatedAsc(activities)
	if len(completed) == 0 {
		return 0
	}

	maxStreak := 1
	current := 1
	cursor := truncateToDay(completed[0].CreatedAt, loc)

	for _, a := range completed[1:] {
		day := truncateToDay(a.CreatedAt, loc)
		next := cursor.AddDate(0, 0, 1)

		if day.Equal(next) {
			current++
			if current > maxStreak {
				maxStreak = current
			}
		} else if day.After(next) {
			current = 1
		}
		// day == cursor leaves the run untouched.

		cursor = day
	}

	return maxStreak
}

func truncateToDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func sortedByCreatedDesc(activities []models.Activity) []models.Activity {
	out := make([]models.Activity, len(activities))
	copy(out, activities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func completedByCreatedDesc(activities []models.Activity) []models.Activity {
	var out []models.Activity
	for _, a := range activities {
		if a.Completed {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func completedByCreatedAsc(activities []models.Activity) []models.Activity {
	var out []models.Activity
	for _, a := range activities {
		if a.Completed {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
