package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/middleware"
)

// RouterConfig controls the middleware stack around the handlers.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimit          middleware.RateLimitConfig
	// Identity enables bearer-token authentication on /api routes other than
	// /api/auth/verify. Nil leaves them open.
	Identity middleware.IdentityVerifier
	Logger   *slog.Logger
}

// NewRouter mounts h on a chi router. ctx bounds background middleware work.
func NewRouter(ctx context.Context, h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.RequestsPerSecond > 0 {
			r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
		}

		r.Post("/auth/verify", h.VerifyLogin)

		r.Group(func(r chi.Router) {
			if cfg.Identity != nil {
				r.Use(middleware.Authenticate(cfg.Identity))
			}

			r.Get("/drive/files/{id}", h.ListFiles)
			r.Get("/drive/search", h.SearchFiles)
			r.Get("/deliverables", h.ListDeliverables)
			r.Post("/ai/analyze", h.Analyze)
			r.Get("/ai/history", h.History)
			r.Get("/ai/providers", h.Providers)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleTeacher))
				r.Get("/drive/sync-submissions", h.SyncSubmissions)
				r.Delete("/drive/files/{id}", h.DeleteFile)
				r.Post("/drive/folders", h.CreateFolder)
				r.Get("/sync/runs", h.ListSyncRuns)
			})
		})
	})

	return r
}
