package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"neurospark-backend/internal/handlers"
	"neurospark-backend/internal/middleware"
	"neurospark-backend/internal/websocket"
)

func New(
	parentGate *middleware.ParentGate,
	learnerHandler *handlers.LearnerHandler,
	parentHandler *handlers.ParentHandler,
	activityHandler *handlers.ActivityHandler,
	progressHandler *handlers.ProgressHandler,
	aiHandler *handlers.AIHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// PIN unlock rate limiter (10 req/min per IP)
	unlockLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Learner Profile ────
		r.Route("/learner", func(r chi.Router) {
			r.Get("/", learnerHandler.Get)

			// Settings changes sit behind the parent gate
			r.Group(func(r chi.Router) {
				r.Use(parentGate.Middleware)
				r.Put("/{id}/settings", learnerHandler.UpdateSettings)
			})
		})

		// ──── Parent Gate ────
		r.Route("/parent", func(r chi.Router) {
			r.Use(unlockLimiter.Middleware)
			r.Post("/unlock", parentHandler.Unlock)
		})

		// ──── Activities ────
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", activityHandler.List)
			r.Post("/", activityHandler.Create)
		})

		// ──── Progress & Badges ────
		r.Get("/progress", progressHandler.Stats)
		r.Get("/badges", progressHandler.Badges)

		// ──── AI ────
		r.Route("/ai", func(r chi.Router) {
			r.Post("/feedback", aiHandler.Feedback)
			r.Post("/content", aiHandler.Content)
			r.Post("/summary", aiHandler.Summary)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
