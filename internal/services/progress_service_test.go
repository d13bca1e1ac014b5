package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"neurospark-backend/internal/models"
)

var testNow = time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

// In-memory fakes

type fakeLearnerStore struct {
	learners map[uuid.UUID]*models.Learner
}

func newFakeLearnerStore(ids ...uuid.UUID) *fakeLearnerStore {
	s := &fakeLearnerStore{learners: make(map[uuid.UUID]*models.Learner)}
	for _, id := range ids {
		s.learners[id] = &models.Learner{ID: id, Name: "Learner"}
	}
	return s
}

func (s *fakeLearnerStore) GetByID(_ context.Context, id uuid.UUID) (*models.Learner, error) {
	l, ok := s.learners[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return l, nil
}

func (s *fakeLearnerStore) GetOrCreateDefault(_ context.Context) (*models.Learner, error) {
	for _, l := range s.learners {
		return l, nil
	}
	l := &models.Learner{ID: uuid.New(), Name: "Learner"}
	s.learners[l.ID] = l
	return l, nil
}

type fakeActivityStore struct {
	activities []models.Activity
	clock      func() time.Time
}

func (s *fakeActivityStore) Create(_ context.Context, a *models.Activity) error {
	a.ID = uuid.New()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.clock()
	}
	s.activities = append(s.activities, *a)
	return nil
}

func (s *fakeActivityStore) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]models.Activity, error) {
	var out []models.Activity
	for _, a := range s.activities {
		if a.LearnerID == learnerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeBadgeStore struct {
	badges    []models.Badge
	createErr error
}

func (s *fakeBadgeStore) Create(_ context.Context, b *models.Badge) error {
	if s.createErr != nil {
		return s.createErr
	}
	b.ID = uuid.New()
	b.EarnedAt = testNow
	s.badges = append(s.badges, *b)
	return nil
}

func (s *fakeBadgeStore) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]models.Badge, error) {
	var out []models.Badge
	for _, b := range s.badges {
		if b.LearnerID == learnerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func newTestService(learnerID uuid.UUID) (*ProgressService, *fakeActivityStore, *fakeBadgeStore) {
	activities := &fakeActivityStore{clock: func() time.Time { return testNow }}
	badges := &fakeBadgeStore{}
	svc := NewProgressService(newFakeLearnerStore(learnerID), activities, badges, nil).
		WithClock(func() time.Time { return testNow })
	return svc, activities, badges
}

func intPtr(n int) *int { return &n }

func TestRecordActivity_ValidationFailFast(t *testing.T) {
	learnerID := uuid.New()
	svc, activities, _ := newTestService(learnerID)

	input := models.ActivityInput{
		ActivityType: "",
		Difficulty:   0,
		Score:        intPtr(-1),
		TimeSpent:    intPtr(-30),
	}

	_, err := svc.RecordActivityAndEvaluateBadges(context.Background(), learnerID, input)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	for _, field := range []string{"activity_type", "difficulty", "score", "time_spent"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("Expected field error for %q, got %v", field, ve.Fields)
		}
	}
	if len(activities.activities) != 0 {
		t.Errorf("Expected nothing persisted after validation failure, got %d activities", len(activities.activities))
	}
}

func TestRecordActivity_LearnerNotFound(t *testing.T) {
	svc, _, _ := newTestService(uuid.New())

	input := models.ActivityInput{ActivityType: "math", Difficulty: 1}
	_, err := svc.RecordActivityAndEvaluateBadges(context.Background(), uuid.New(), input)

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestRecordActivity_FirstSessionAndPerfectScore(t *testing.T) {
	learnerID := uuid.New()
	svc, _, badges := newTestService(learnerID)

	input := models.ActivityInput{
		ActivityType: "math",
		Difficulty:   2,
		Score:        intPtr(5),
		TimeSpent:    intPtr(120),
		Completed:    true,
	}

	result, err := svc.RecordActivityAndEvaluateBadges(context.Background(), learnerID, input)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{models.BadgeFirstSession, models.BadgePerfectScore}
	if len(result.BadgesAwarded) != len(want) {
		t.Fatalf("Expected badges %v, got %v", want, result.BadgesAwarded)
	}
	for i, badgeType := range want {
		if result.BadgesAwarded[i] != badgeType {
			t.Errorf("Expected badge %d to be %s, got %s", i, badgeType, result.BadgesAwarded[i])
		}
	}
	if len(badges.badges) != 2 {
		t.Errorf("Expected 2 persisted badges, got %d", len(badges.badges))
	}
}

func TestRecordActivity_IncompleteEarnsNothing(t *testing.T) {
	learnerID := uuid.New()
	svc, _, badges := newTestService(learnerID)

	input := models.ActivityInput{
		ActivityType: "reading",
		Difficulty:   1,
		Completed:    false,
	}

	result, err := svc.RecordActivityAndEvaluateBadges(context.Background(), learnerID, input)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.BadgesAwarded) != 0 {
		t.Errorf("Expected no badges for incomplete activity, got %v", result.BadgesAwarded)
	}
	if len(badges.badges) != 0 {
		t.Errorf("Expected no persisted badges, got %d", len(badges.badges))
	}
}

func TestRecordActivity_BadgeInsertFailureDoesNotFailCall(t *testing.T) {
	learnerID := uuid.New()
	svc, activities, badges := newTestService(learnerID)
	badges.createErr = errors.New("connection reset")

	input := models.ActivityInput{
		ActivityType: "math",
		Difficulty:   1,
		Score:        intPtr(5),
		Completed:    true,
	}

	result, err := svc.RecordActivityAndEvaluateBadges(context.Background(), learnerID, input)
	if err != nil {
		t.Fatalf("Expected activity creation to survive badge failure, got %v", err)
	}
	if len(result.BadgesAwarded) != 0 {
		t.Errorf("Expected no awarded badges when inserts fail, got %v", result.BadgesAwarded)
	}
	if len(activities.activities) != 1 {
		t.Errorf("Expected the activity to be persisted, got %d", len(activities.activities))
	}
}

func TestGetProgressStats_RoundTrip(t *testing.T) {
	learnerID := uuid.New()
	svc, activities, _ := newTestService(learnerID)

	// Yesterday's session, then today's.
	activities.clock = func() time.Time { return testNow.AddDate(0, 0, -1) }
	_, err := svc.RecordActivityAndEvaluateBadges(context.Background(), learnerID, models.ActivityInput{
		ActivityType: "reading",
		Difficulty:   1,
		Score:        intPtr(3),
		TimeSpent:    intPtr(90),
		Completed:    true,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	activities.clock = func() time.Time { return testNow }
	_, err = svc.RecordActivityAndEvaluateBadges(context.Background(), learnerID, models.ActivityInput{
		ActivityType: "math",
		Difficulty:   2,
		Score:        intPtr(5),
		TimeSpent:    intPtr(150),
		Completed:    true,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stats, err := svc.GetProgressStats(context.Background(), learnerID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if stats.TotalSessions != 2 {
		t.Errorf("Expected 2 sessions, got %d", stats.TotalSessions)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("Expected streak of 2, got %d", stats.CurrentStreak)
	}
	// Both scored activities count as fully correct: 10/10.
	if stats.Accuracy != 100 {
		t.Errorf("Expected accuracy 100, got %d", stats.Accuracy)
	}
	// 240 seconds rounds to 4 minutes.
	if stats.TotalTimeSpent != 4 {
		t.Errorf("Expected 4 minutes, got %d", stats.TotalTimeSpent)
	}
	if stats.BadgeCount != 2 {
		t.Errorf("Expected 2 badges (first-session, then perfect-score), got %d", stats.BadgeCount)
	}
	if len(stats.RecentActivities) != 2 {
		t.Fatalf("Expected 2 recent activities, got %d", len(stats.RecentActivities))
	}
	if stats.RecentActivities[0].ActivityType != "math" {
		t.Errorf("Expected newest activity first, got %s", stats.RecentActivities[0].ActivityType)
	}
}

func TestGetProgressStats_UnknownLearner(t *testing.T) {
	svc, _, _ := newTestService(uuid.New())

	_, err := svc.GetProgressStats(context.Background(), uuid.New())

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}
