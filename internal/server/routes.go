package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
	// VideoDir is served under /videos/.
	VideoDir string
	// FrontendDir holds index.html and is served under /static/.
	// Empty disables the frontend routes.
	FrontendDir string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		VideoDir:       "videos",
		FrontendDir:    "frontend",
	}
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/generate-video", h.GenerateVideo)
		r.Get("/video-status/{job_id}", h.VideoStatus)
		r.Get("/jobs", h.ListJobs)
	})

	if cfg.VideoDir != "" {
		r.Handle("/videos/*", http.StripPrefix("/videos/", http.FileServer(http.Dir(cfg.VideoDir))))
	}

	if cfg.FrontendDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.FrontendDir))))
		index := filepath.Join(cfg.FrontendDir, "index.html")
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			if _, err := os.Stat(index); err != nil {
				writeError(w, http.StatusNotFound, "frontend not found", "NOT_FOUND")
				return
			}
			http.ServeFile(w, r, index)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
	})

	return r
}
