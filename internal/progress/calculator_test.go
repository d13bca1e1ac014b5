package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"neurospark-backend/internal/models"
)

// Pinned evaluation time: 2025-03-15 14:00 UTC.
var testNow = time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

func completedAt(t time.Time) models.Activity {
	return models.Activity{
		ID:           uuid.New(),
		ActivityType: "math",
		Difficulty:   1,
		Completed:    true,
		CreatedAt:    t,
	}
}

// daysAgo returns a timestamp n whole days before testNow.
func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func intPtr(n int) *int { return &n }

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name       string
		activities []models.Activity
		expected   int
	}{
		{"empty ledger", nil, 0},
		{
			"no completed activities",
			[]models.Activity{
				{CreatedAt: daysAgo(0), Completed: false},
				{CreatedAt: daysAgo(1), Completed: false},
			},
			0,
		},
		{
			"single activity today",
			[]models.Activity{completedAt(daysAgo(0))},
			1,
		},
		{
			"latest activity yesterday still counts",
			[]models.Activity{completedAt(daysAgo(1)), completedAt(daysAgo(2))},
			2,
		},
		{
			"latest activity two days ago breaks the streak",
			[]models.Activity{completedAt(daysAgo(2)), completedAt(daysAgo(3))},
			0,
		},
		{
			"three consecutive days",
			[]models.Activity{
				completedAt(daysAgo(0)),
				completedAt(daysAgo(1)),
				completedAt(daysAgo(2)),
			},
			3,
		},
		{
			"repeat day does not extend the streak",
			[]models.Activity{
				completedAt(daysAgo(0)),
				completedAt(daysAgo(1)),
				completedAt(daysAgo(2)),
				completedAt(daysAgo(2).Add(-2 * time.Hour)),
			},
			3,
		},
		{
			"gap stops the walk",
			[]models.Activity{completedAt(daysAgo(0)), completedAt(daysAgo(2))},
			1,
		},
		{
			"several sessions today count once",
			[]models.Activity{
				completedAt(daysAgo(0)),
				completedAt(daysAgo(0).Add(-1 * time.Hour)),
				completedAt(daysAgo(0).Add(-3 * time.Hour)),
			},
			1,
		},
		{
			"incomplete activity does not bridge a gap",
			[]models.Activity{
				completedAt(daysAgo(0)),
				{CreatedAt: daysAgo(1), Completed: false},
				completedAt(daysAgo(2)),
			},
			1,
		},
		{
			"unsorted input is sorted internally",
			[]models.Activity{
				completedAt(daysAgo(2)),
				completedAt(daysAgo(0)),
				completedAt(daysAgo(1)),
			},
			3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CurrentStreak(tc.activities, testNow)
			if result != tc.expected {
				t.Errorf("Expected streak %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestCurrentStreak_DayBoundary(t *testing.T) {
	// 23:59 yesterday and 00:05 today are adjacent calendar days even
	// though they are minutes apart.
	lateYesterday := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	earlyToday := time.Date(2025, 3, 15, 0, 5, 0, 0, time.UTC)

	activities := []models.Activity{
		completedAt(earlyToday),
		completedAt(lateYesterday),
	}

	if streak := CurrentStreak(activities, testNow); streak != 2 {
		t.Errorf("Expected streak 2 across midnight, got %d", streak)
	}
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name       string
		activities []models.Activity
		expected   int
	}{
		{"empty ledger", nil, 0},
		{"single day", []models.Activity{completedAt(daysAgo(10))}, 1},
		{
			"old run longer than the current one",
			[]models.Activity{
				// Current run: 2 days.
				completedAt(daysAgo(0)),
				completedAt(daysAgo(1)),
				// Old run: 4 days.
				completedAt(daysAgo(5)),
				completedAt(daysAgo(6)),
				completedAt(daysAgo(7)),
				completedAt(daysAgo(8)),
			},
			4,
		},
		{
			"repeat days count once",
			[]models.Activity{
				completedAt(daysAgo(3)),
				completedAt(daysAgo(3).Add(-1 * time.Hour)),
				completedAt(daysAgo(4)),
			},
			2,
		},
		{
			"incomplete activities are ignored",
			[]models.Activity{
				completedAt(daysAgo(3)),
				{CreatedAt: daysAgo(4), Completed: false},
				completedAt(daysAgo(5)),
			},
			1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := LongestStreak(tc.activities, time.UTC)
			if result != tc.expected {
				t.Errorf("Expected longest streak %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestCurrentStreakNeverExceedsLongest(t *testing.T) {
	sets := [][]models.Activity{
		nil,
		{completedAt(daysAgo(0))},
		{completedAt(daysAgo(0)), completedAt(daysAgo(1)), completedAt(daysAgo(2))},
		{completedAt(daysAgo(0)), completedAt(daysAgo(2))},
		{completedAt(daysAgo(2)), completedAt(daysAgo(3)), completedAt(daysAgo(4))},
		{
			completedAt(daysAgo(0)),
			completedAt(daysAgo(1)),
			completedAt(daysAgo(5)),
			completedAt(daysAgo(6)),
			completedAt(daysAgo(7)),
		},
	}

	for i, set := range sets {
		current := CurrentStreak(set, testNow)
		longest := LongestStreak(set, testNow.Location())
		if current > longest {
			t.Errorf("Set %d: current streak %d exceeds longest %d", i, current, longest)
		}
	}
}

func TestComputeStats_Accuracy(t *testing.T) {
	tests := []struct {
		name       string
		activities []models.Activity
		expected   int
	}{
		{"no scored activities", []models.Activity{completedAt(daysAgo(0))}, 0},
		{
			"partial score counts as correct",
			[]models.Activity{
				{CreatedAt: daysAgo(0), Completed: true, Score: intPtr(3)},
				{CreatedAt: daysAgo(0), Completed: true, Score: intPtr(1)},
			},
			100,
		},
		{
			"zero score counts as incorrect",
			[]models.Activity{
				{CreatedAt: daysAgo(0), Completed: true, Score: intPtr(0)},
				{CreatedAt: daysAgo(0), Completed: true, Score: intPtr(4)},
			},
			50,
		},
		{
			"rounds to nearest percent",
			[]models.Activity{
				{CreatedAt: daysAgo(0), Completed: true, Score: intPtr(2)},
				{CreatedAt: daysAgo(0), Completed: true, Score: intPtr(0)},
				{CreatedAt: daysAgo(0), Completed: true, Score: intPtr(0)},
			},
			33,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stats := ComputeStats(tc.activities, nil, testNow)
			if stats.Accuracy != tc.expected {
				t.Errorf("Expected accuracy %d, got %d", tc.expected, stats.Accuracy)
			}
		})
	}
}

func TestComputeStats_TimeSpentRounding(t *testing.T) {
	tests := []struct {
		name     string
		seconds  []int
		expected int
	}{
		{"rounds half up", []int{90}, 2},
		{"rounds down below half", []int{89}, 1},
		{"sums across activities", []int{30, 40}, 1},
		{"zero", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var activities []models.Activity
			for _, s := range tc.seconds {
				sec := s
				// Incomplete on purpose: time counts for all activities.
				activities = append(activities, models.Activity{
					CreatedAt: daysAgo(0),
					TimeSpent: &sec,
				})
			}

			stats := ComputeStats(activities, nil, testNow)
			if stats.TotalTimeSpent != tc.expected {
				t.Errorf("Expected %d minutes, got %d", tc.expected, stats.TotalTimeSpent)
			}
		})
	}
}

func TestComputeStats_SessionsAndRecent(t *testing.T) {
	var activities []models.Activity
	for i := 0; i < 7; i++ {
		a := completedAt(daysAgo(0).Add(time.Duration(-i) * time.Minute))
		activities = append(activities, a)
	}
	activities = append(activities, models.Activity{CreatedAt: daysAgo(1), Completed: false})

	badges := []models.Badge{
		{BadgeType: models.BadgeStreak3},
		{BadgeType: models.BadgeStreak3}, // duplicates are counted
	}

	stats := ComputeStats(activities, badges, testNow)

	if stats.TotalSessions != 7 {
		t.Errorf("Expected 7 sessions (completed only), got %d", stats.TotalSessions)
	}
	if stats.BadgeCount != 2 {
		t.Errorf("Expected badge count 2, got %d", stats.BadgeCount)
	}
	if len(stats.RecentActivities) != 5 {
		t.Fatalf("Expected 5 recent activities, got %d", len(stats.RecentActivities))
	}
	for i := 1; i < len(stats.RecentActivities); i++ {
		if stats.RecentActivities[i].CreatedAt.After(stats.RecentActivities[i-1].CreatedAt) {
			t.Error("Recent activities are not ordered most-recent-first")
		}
	}
	if !stats.RecentActivities[0].CreatedAt.Equal(activities[0].CreatedAt) {
		t.Error("Most recent activity is not first")
	}
}
