package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lingosub/backend/internal/api/handlers"
	"github.com/lingosub/backend/internal/api/middleware"
	"github.com/lingosub/backend/internal/auth"
	"github.com/lingosub/backend/internal/config"
	"github.com/lingosub/backend/internal/db"
	"github.com/lingosub/backend/internal/job"
	"github.com/lingosub/backend/internal/ollama"
	"github.com/lingosub/backend/internal/storage"
)

func NewRouter(database *db.Database, jwtService *auth.JWTService, cfg *config.Config, jobQueue *job.JobQueue, store *storage.Store, client *ollama.Client) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Login attempts are rate limited per IP to slow down brute forcing
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Handlers
	authHandler := handlers.NewAuthHandler(database, jwtService)
	documentsHandler := handlers.NewDocumentsHandler(database, store, jobQueue)
	backendsHandler := handlers.NewBackendsHandler(database, client)
	jobHandler := handlers.NewJobHandler(jobQueue)
	presetsHandler := handlers.NewPresetsHandler(database)
	settingsHandler := handlers.NewSettingsHandler(database)
	adminHandler := handlers.NewAdminHandler(database, jobQueue, loginLimiter, cfg.DataPath)

	r.Route("/api", func(r chi.Router) {
		// Health (public, used by container orchestrators)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Auth (public)
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Handler)
			r.Use(middleware.MaxBodySize(1 << 20))
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			// Uploads carry whole subtitle files and get a larger body cap
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", "editor"))
				r.Use(middleware.MaxBodySize(16 << 20))
				r.Post("/documents", documentsHandler.Upload)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodySize(1 << 20))

				// Auth
				r.Get("/auth/me", authHandler.Me)

				// Documents
				r.Get("/documents", documentsHandler.ListDocuments)
				r.Get("/documents/{id}", documentsHandler.GetDocument)
				r.Get("/documents/{id}/content", documentsHandler.Content)
				r.Get("/documents/{id}/download", documentsHandler.Download)

				// Jobs
				r.Get("/jobs", jobHandler.ListJobs)
				r.Get("/jobs/active", jobHandler.ListActiveJobs)
				r.Get("/jobs/{id}", jobHandler.GetJob)

				// Backends and presets (read side)
				r.Get("/backends", backendsHandler.ListBackends)
				r.Get("/backends/available", backendsHandler.ListAvailable)
				r.Get("/presets", presetsHandler.ListPresets)
				r.Get("/presets/builtins", presetsHandler.ListBuiltins)

				// Settings
				r.Get("/settings", settingsHandler.GetSettings)

				// Editors run translations and manage their artifacts
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin", "editor"))

					r.Post("/documents/{id}/translate", documentsHandler.Translate)
					r.Delete("/documents/{id}", documentsHandler.DeleteDocument)

					r.Delete("/jobs/{id}", jobHandler.DeleteJob)
					r.Post("/jobs/{id}/retry", jobHandler.RetryJob)

					r.Post("/presets", presetsHandler.CreatePreset)
					r.Put("/presets/{id}", presetsHandler.UpdatePreset)
					r.Delete("/presets/{id}", presetsHandler.DeletePreset)

					r.Get("/backends/{id}/probe", backendsHandler.Probe)
					r.Get("/backends/{id}/models", backendsHandler.ListModels)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin"))

					r.Post("/backends", backendsHandler.CreateBackend)
					r.Put("/backends/{id}", backendsHandler.UpdateBackend)
					r.Delete("/backends/{id}", backendsHandler.DeleteBackend)

					r.Put("/settings", settingsHandler.UpdateSettings)

					r.Get("/admin/users", adminHandler.ListUsers)
					r.Post("/admin/users", adminHandler.CreateUser)
					r.Put("/admin/users/{id}", adminHandler.UpdateUser)
					r.Delete("/admin/users/{id}", adminHandler.DeleteUser)

					r.Get("/admin/stats", adminHandler.DashboardStats)
					r.Get("/admin/ratelimit", adminHandler.RateLimitStatus)
					r.Delete("/admin/ratelimit", adminHandler.RateLimitClear)
				})
			})
		})
	})

	return r
}
