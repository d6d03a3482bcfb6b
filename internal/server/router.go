package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexgraph/lexgraph/internal/api"
	"github.com/lexgraph/lexgraph/internal/api/handlers"
	"github.com/lexgraph/lexgraph/internal/api/middleware"
)

type RouterConfig struct {
	TokenValidator  middleware.TokenValidator
	AuthHandler     *handlers.AuthHandler
	DocumentHandler *handlers.DocumentHandler
	SearchHandler   *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth/register", cfg.AuthHandler.Register)
	r.Post("/auth/login", cfg.AuthHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.TokenValidator))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.Upload)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
			r.Post("/{id}/reprocess", cfg.DocumentHandler.Reprocess)
			r.Get("/{id}/chunks", cfg.DocumentHandler.Chunks)
			r.Get("/{id}/stats", cfg.DocumentHandler.Stats)
			r.Get("/{id}/download", cfg.DocumentHandler.Download)
		})

		r.Post("/search", cfg.SearchHandler.Search)
		r.Post("/ask", cfg.SearchHandler.Ask)
		r.Get("/stats", cfg.SearchHandler.Stats)
	})

	return r
}
