package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	digestLastSentKey  = "progress_digest_last_sent_at"
	digestInterval     = 7 * 24 * time.Hour
	digestPollInterval = 1 * time.Hour
)

// DigestScheduler emails the configured parent address a weekly progress
// summary. Disabled when no parent email is configured.
type DigestScheduler struct {
	learners    LearnerStore
	activities  ActivityStore
	progressSvc *ProgressService
	gemini      *GeminiService
	email       *EmailService
	redis       *redis.Client
	parentEmail string
	stopChan    chan struct{}
}

func NewDigestScheduler(
	learners LearnerStore,
	activities ActivityStore,
	progressSvc *ProgressService,
	gemini *GeminiService,
	email *EmailService,
	redisClient *redis.Client,
	parentEmail string,
) *DigestScheduler {
	return &DigestScheduler{
		learners:    learners,
		activities:  activities,
		progressSvc: progressSvc,
		gemini:      gemini,
		email:       email,
		redis:       redisClient,
		parentEmail: parentEmail,
		stopChan:    make(chan struct{}),
	}
}

func (s *DigestScheduler) Start() {
	if s.parentEmail == "" {
		log.Println("Progress digest disabled (PARENT_DIGEST_EMAIL not set)")
		return
	}

	go s.loop()
	log.Printf("Progress digest scheduler started (to %s)", s.parentEmail)
}

func (s *DigestScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *DigestScheduler) loop() {
	// Run on startup as well as by interval.
	s.run(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(digestPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.run(context.Background(), time.Now().UTC())
		}
	}
}

func (s *DigestScheduler) run(ctx context.Context, now time.Time) {
	if !s.shouldSend(ctx, now) {
		return
	}

	learner, err := s.learners.GetOrCreateDefault(ctx)
	if err != nil {
		log.Printf("progress digest: failed to load learner: %v", err)
		return
	}

	stats, err := s.progressSvc.GetProgressStats(ctx, learner.ID)
	if err != nil {
		log.Printf("progress digest: failed to compute stats: %v", err)
		return
	}

	// Nothing to report yet.
	if stats.TotalSessions == 0 {
		return
	}

	activities, err := s.activities.ListByLearner(ctx, learner.ID)
	if err != nil {
		log.Printf("progress digest: failed to load activities: %v", err)
		return
	}
	if len(activities) > 20 {
		activities = activities[:20]
	}

	summaryText := s.gemini.GenerateProgressSummary(ctx, activities, "week")

	if err := s.email.SendProgressDigestEmail(s.parentEmail, learner.Name, summaryText, *stats); err != nil {
		log.Printf("progress digest: failed to send: %v", err)
		return
	}

	if err := s.redis.Set(ctx, digestLastSentKey, now.Format(time.RFC3339), 0).Err(); err != nil {
		log.Printf("progress digest: failed to persist last sent at: %v", err)
	}
}

func (s *DigestScheduler) shouldSend(ctx context.Context, now time.Time) bool {
	raw, err := s.redis.Get(ctx, digestLastSentKey).Result()
	if err != nil || raw == "" {
		return true
	}

	lastSentAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true
	}

	return now.Sub(lastSentAt) >= digestInterval
}
