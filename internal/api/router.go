package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted. The
// liveness probe stays outside the auth group so orchestrators can
// reach it without credentials.
func NewRouter(h *Handler, token string) chi.Router {
	r := chi.NewRouter()

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(token))

		r.Post("/api/generate", h.Generate)
		r.Get("/api/types", h.Types)
		r.Get("/api/runs", h.Runs)
	})

	return r
}
