// Route registration and go-chi router setup: public routes (/health,
// /auth/*) and JWT-protected routes (/api/v1/*).
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plumenote/plume/internal/api/handlers"
	apmiddleware "github.com/plumenote/plume/internal/api/middleware"
	domainauth "github.com/plumenote/plume/internal/domain/auth"
	"github.com/plumenote/plume/internal/domain/document"
	"github.com/plumenote/plume/internal/domain/history"
	"github.com/plumenote/plume/internal/domain/suggest"
	"github.com/plumenote/plume/internal/infra/config"
	"github.com/plumenote/plume/internal/infra/eventbus"
	"github.com/plumenote/plume/internal/infra/llm"
)

// NewRouter creates and configures the chi router with all routes. The
// returned Manager owns the per-document suggestion coordinators; the caller
// closes it on shutdown.
func NewRouter(db *sql.DB, cfg config.Config) (*chi.Mux, *suggest.Manager) {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	authHandler := handlers.NewAuthHandler(domainauth.NewService(db))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	// Shared app services. One event bus and one coordinator manager serve
	// every request; coordinators are created lazily per document.
	bus := eventbus.New()
	provider := llm.NewOllamaProvider(cfg.LLM.OllamaBaseURL, cfg.LLM.ChatModel)
	llmRouter := llm.NewRouter(map[string]llm.LLMProvider{cfg.LLM.Provider: provider}, cfg.LLM.Provider)
	attemptLog := history.NewService(db)
	manager := suggest.NewManager(
		suggest.NewServiceClient(llmRouter),
		suggest.Config{
			DebounceDelay:   cfg.Suggest.DebounceDelay(),
			Cooldown:        cfg.Suggest.Cooldown(),
			FailureCooldown: cfg.Suggest.FailureCooldown(),
		},
		bus,
		attemptLog,
	)
	documentService := document.NewService(db)

	documentHandler := handlers.NewDocumentHandler(documentService, manager)
	suggestionHandler := handlers.NewSuggestionHandler(documentService, manager, attemptLog, bus)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentHandler.Create)       // POST /api/v1/documents
			r.Get("/", documentHandler.List)          // GET /api/v1/documents
			r.Get("/{id}", documentHandler.Get)       // GET /api/v1/documents/{id}
			r.Put("/{id}", documentHandler.Update)    // PUT /api/v1/documents/{id}
			r.Delete("/{id}", documentHandler.Delete) // DELETE /api/v1/documents/{id}

			r.Route("/{id}/suggestions", func(r chi.Router) {
				r.Get("/", suggestionHandler.Get)                    // GET .../suggestions
				r.Post("/refresh", suggestionHandler.Refresh)        // POST .../suggestions/refresh
				r.Put("/settings", suggestionHandler.UpdateSettings) // PUT .../suggestions/settings
				r.Post("/match", suggestionHandler.Match)            // POST .../suggestions/match
				r.Get("/attempts", suggestionHandler.ListAttempts)   // GET .../suggestions/attempts
				r.Get("/stream", suggestionHandler.Stream)           // GET .../suggestions/stream
			})
		})
	})

	return r, manager
}
