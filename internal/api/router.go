package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Satyam216/todo-collab/internal/api/middleware"
	"github.com/Satyam216/todo-collab/internal/handlers"
)

// NewRouter creates and configures the HTTP router. limiter's counter
// and the handler's notifier/cache may be nil in development.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, guard *middleware.Guard, limiter *middleware.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	r.Use(limiter.Middleware)

	// CORS - the web client may be served from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Landing page and static assets
	r.Get("/", serveLandingPage)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir()))))
	r.Get("/api", h.Root)

	// Public routes (no auth required)
	r.Get("/health", h.Health)
	r.Post("/auth/signin", h.SignIn)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireSession)

		r.Post("/auth/signout", h.SignOut)
		r.Get("/auth/me", h.Me)

		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms/{roomID}", h.GetRoom)

		r.Post("/rooms/{roomID}/tasks", h.AddTask)
		r.Get("/rooms/{roomID}/tasks", h.ListTasks)
		r.Put("/rooms/{roomID}/tasks/{taskID}", h.EditTask)
		r.Patch("/rooms/{roomID}/tasks/{taskID}/completed", h.ToggleTask)
		r.Delete("/rooms/{roomID}/tasks/{taskID}", h.DeleteTask)

		r.Get("/rooms/{roomID}/ws", h.WatchRoom)
	})

	return r
}

// staticDir returns the path to static files directory.
func staticDir() string {
	// Check if running from app directory (production container)
	if _, err := os.Stat("/app/web/static"); err == nil {
		return "/app/web/static"
	}
	return "web/static"
}

// serveLandingPage serves the main landing page.
func serveLandingPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, staticDir()+"/index.html")
}
