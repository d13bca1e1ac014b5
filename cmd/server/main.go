package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"neurospark-backend/internal/config"
	"neurospark-backend/internal/database"
	"neurospark-backend/internal/handlers"
	"neurospark-backend/internal/middleware"
	"neurospark-backend/internal/repository"
	"neurospark-backend/internal/router"
	"neurospark-backend/internal/services"
	"neurospark-backend/internal/websocket"
	"neurospark-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting NeuroSpark Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	learnerRepo := repository.NewLearnerRepo(pool)
	activityRepo := repository.NewActivityRepo(pool)
	badgeRepo := repository.NewBadgeRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	progressService := services.NewProgressService(learnerRepo, activityRepo, badgeRepo, redisClients.Queue)

	// The PIN is configured in plain text; hash it once at startup so the
	// unlock handler only ever compares against the hash.
	parentGate := middleware.NewParentGate(cfg.JWTSecret)
	pinHash, err := bcrypt.GenerateFromPassword([]byte(cfg.ParentPIN), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("✗ Parent PIN hashing failed: %v", err)
	}

	// ──── Initialize Handlers ────
	learnerHandler := handlers.NewLearnerHandler(learnerRepo)
	parentHandler := handlers.NewParentHandler(parentGate, pinHash)
	activityHandler := handlers.NewActivityHandler(learnerRepo, activityRepo, progressService)
	progressHandler := handlers.NewProgressHandler(learnerRepo, badgeRepo, progressService)
	aiHandler := handlers.NewAIHandler(geminiService, redisClients.Queue, learnerRepo, activityRepo)

	// ──── Step 6: Start Prefetch Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, geminiService, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Prefetch worker pool started (%d goroutines)", cfg.WorkerCount)

	digestScheduler := services.NewDigestScheduler(
		learnerRepo,
		activityRepo,
		progressService,
		geminiService,
		emailService,
		redisClients.Queue,
		cfg.ParentDigestEmail,
	)
	digestScheduler.Start()

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		parentGate,
		learnerHandler,
		parentHandler,
		activityHandler,
		progressHandler,
		aiHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		digestScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ NeuroSpark Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
