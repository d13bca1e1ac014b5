package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"neurospark-backend/internal/services"
)

const (
	prefetchQueue = "queue:content-prefetch"
	cacheCap      = 10
	lockTTL       = 2 * time.Minute
)

// PrefetchJob asks a worker to generate one piece of content ahead of
// time so the child never waits on the model during play.
type PrefetchJob struct {
	ContentType string `json:"content_type"`
	Difficulty  int    `json:"difficulty"`
}

// CacheKey is the Redis list that holds ready-to-serve content for a
// given type and difficulty.
func CacheKey(contentType string, difficulty int) string {
	return fmt.Sprintf("content_cache:%s:%d", contentType, difficulty)
}

// EnqueuePrefetch pushes a prefetch job. Callers fire this after
// consuming a cached item to keep the cache warm.
func EnqueuePrefetch(ctx context.Context, redisClient *redis.Client, contentType string, difficulty int) error {
	job := PrefetchJob{ContentType: contentType, Difficulty: difficulty}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return redisClient.RPush(ctx, prefetchQueue, string(data)).Err()
}

type Pool struct {
	redis       *redis.Client
	gemini      *services.GeminiService
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, gemini *services.GeminiService, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		gemini:      gemini,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d prefetch worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, prefetchQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job PrefetchJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse prefetch job: %v", id, err)
			continue
		}

		// One worker per slot at a time, so a burst of enqueues does not
		// fan out into duplicate model calls.
		lockKey := fmt.Sprintf("prefetch_lock:%s:%d", job.ContentType, job.Difficulty)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil || !locked {
			continue
		}

		if err := p.process(ctx, job); err != nil {
			log.Printf("Worker %d: prefetch %s/%d failed: %v", id, job.ContentType, job.Difficulty, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) process(ctx context.Context, job PrefetchJob) error {
	cacheKey := CacheKey(job.ContentType, job.Difficulty)

	// Cache already full, skip the model call.
	size, err := p.redis.LLen(ctx, cacheKey).Result()
	if err == nil && size >= cacheCap {
		return nil
	}

	content, err := p.gemini.GenerateContent(ctx, job.ContentType, job.Difficulty)
	if err != nil {
		return fmt.Errorf("failed to generate content: %w", err)
	}

	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	if err := p.redis.RPush(ctx, cacheKey, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to cache content: %w", err)
	}
	p.redis.LTrim(ctx, cacheKey, 0, cacheCap-1)

	return nil
}
