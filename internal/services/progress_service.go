package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"neurospark-backend/internal/models"
	"neurospark-backend/internal/progress"
)

// Store interfaces are satisfied by the repository package; tests swap in
// in-memory fakes.

type LearnerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Learner, error)
	GetOrCreateDefault(ctx context.Context) (*models.Learner, error)
}

type ActivityStore interface {
	Create(ctx context.Context, a *models.Activity) error
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]models.Activity, error)
}

type BadgeStore interface {
	Create(ctx context.Context, b *models.Badge) error
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]models.Badge, error)
}

type ProgressService struct {
	learners   LearnerStore
	activities ActivityStore
	badges     BadgeStore
	redis      *redis.Client
	now        func() time.Time
}

func NewProgressService(learners LearnerStore, activities ActivityStore, badges BadgeStore, redisClient *redis.Client) *ProgressService {
	return &ProgressService{
		learners:   learners,
		activities: activities,
		badges:     badges,
		redis:      redisClient,
		now:        time.Now,
	}
}

// WithClock pins the evaluation clock. Streak computation depends on the
// current calendar day, so tests need a fixed one.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

// GetProgressStats recomputes the learner's stats from the full ledgers.
// There is no cached or incremental state; a storage failure propagates as
// a single error with no partial result.
func (s *ProgressService) GetProgressStats(ctx context.Context, learnerID uuid.UUID) (*models.ProgressStats, error) {
	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Learner not found"}
		}
		return nil, err
	}

	activities, err := s.activities.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity ledger: %w", err)
	}

	badges, err := s.badges.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}

	stats := progress.ComputeStats(activities, badges, s.now())
	return &stats, nil
}

// RecordActivityAndEvaluateBadges validates and appends one activity, then
// runs the badge rules over the freshly re-read ledger. Badge minting never
// fails the call: a failed insert is logged and the created activity is
// still returned.
//
// Concurrent submissions for the same learner are not coordinated. Two
// racing creations can both observe a pre-insert ledger and both mint the
// same first-session or streak-3 badge.
func (s *ProgressService) RecordActivityAndEvaluateBadges(ctx context.Context, learnerID uuid.UUID, input models.ActivityInput) (*models.RecordActivityResult, error) {
	if err := validateActivityInput(input); err != nil {
		return nil, err
	}

	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Learner not found"}
		}
		return nil, err
	}

	activity := &models.Activity{
		LearnerID:    learnerID,
		ActivityType: input.ActivityType,
		Difficulty:   input.Difficulty,
		Score:        input.Score,
		TimeSpent:    input.TimeSpent,
		Completed:    input.Completed,
		Data:         input.Data,
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	result := &models.RecordActivityResult{Activity: *activity, BadgesAwarded: []string{}}

	// The ledger is re-read so the just-created activity is part of the
	// evaluation. From here on nothing may fail the call.
	ledger, err := s.activities.ListByLearner(ctx, learnerID)
	if err != nil {
		log.Printf("badge evaluation skipped for learner %s: %v", learnerID, err)
		return result, nil
	}

	now := s.now()
	for _, badgeType := range progress.EvaluateBadges(ledger, *activity, now) {
		badge := &models.Badge{LearnerID: learnerID, BadgeType: badgeType}
		if err := s.badges.Create(ctx, badge); err != nil {
			log.Printf("failed to mint %s badge for learner %s: %v", badgeType, learnerID, err)
			continue
		}
		result.BadgesAwarded = append(result.BadgesAwarded, badgeType)

		s.publish(ctx, learnerID, models.WSMessage{
			Type: "badge_earned",
			Payload: models.BadgeEarnedEvent{
				LearnerID: learnerID,
				BadgeType: badgeType,
				EarnedAt:  badge.EarnedAt,
			},
		})
	}

	s.publish(ctx, learnerID, models.WSMessage{
		Type: "activity_recorded",
		Payload: models.ActivityRecordedEvent{
			LearnerID:     learnerID,
			ActivityID:    activity.ID,
			ActivityType:  activity.ActivityType,
			CurrentStreak: progress.CurrentStreak(ledger, now),
		},
	})

	return result, nil
}

func (s *ProgressService) publish(ctx context.Context, learnerID uuid.UUID, msg models.WSMessage) {
	if s.redis == nil {
		return
	}
	data, _ := json.Marshal(msg)
	s.redis.Publish(ctx, fmt.Sprintf("learner_updates:%s", learnerID.String()), string(data))
}

func validateActivityInput(input models.ActivityInput) error {
	fieldErrors := make(map[string]string)

	if input.ActivityType == "" {
		fieldErrors["activity_type"] = "Activity type is required"
	}
	if input.Difficulty < 1 {
		fieldErrors["difficulty"] = "Difficulty must be a positive integer"
	}
	if input.Score != nil && *input.Score < 0 {
		fieldErrors["score"] = "Score cannot be negative"
	}
	if input.TimeSpent != nil && *input.TimeSpent < 0 {
		fieldErrors["time_spent"] = "Time spent cannot be negative"
	}

	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}
	return nil
}

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
