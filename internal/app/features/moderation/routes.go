// internal/app/features/moderation/routes.go
package moderation

import "github.com/go-chi/chi/v5"

// Routes returns the router mounted at /api/moderation.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/check", h.ServeCheck)
	return r
}
