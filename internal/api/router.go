package api

import (
	"net/http"

	"github.com/complegal/comprate/internal/api/handler"
	customMiddleware "github.com/complegal/comprate/internal/api/middleware"
	"github.com/complegal/comprate/internal/config"
	"github.com/complegal/comprate/internal/domain"
	"github.com/complegal/comprate/internal/service"
	"github.com/complegal/comprate/internal/staging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, svc *service.AnalyzerService, stager *staging.Stager, history domain.HistoryRepository) http.Handler {
	r := chi.NewRouter()

	// Global middleware. No request timeout here: report processing legally
	// blocks for the whole upload retry budget.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	analyzeHandler := handler.NewAnalyzeHandler(svc, stager, cfg.Upload.MaxSizeMB)
	chatHandler := handler.NewChatHandler(svc)
	promptHandler := handler.NewPromptHandler(svc)
	historyHandler := handler.NewHistoryHandler(svc)
	sessionHandler := handler.NewSessionHandler(svc)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(cfg.Auth.APIToken)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(history))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/reports/process", analyzeHandler.ProcessReports)

			r.Route("/chat", func(r chi.Router) {
				r.Post("/messages", chatHandler.SendMessage)
				r.Post("/prompts", chatHandler.SendPrompt)
			})

			r.Get("/prompts", promptHandler.List)
			r.Get("/history", historyHandler.List)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Post("/reset", sessionHandler.Reset)
			})
		})
	})

	return r
}
