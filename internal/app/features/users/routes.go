// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns the router mounted at /api/users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeUpsert)
	r.Get("/{externalID}", h.ServeGet)
	r.Get("/{externalID}/requests", h.ServeCreated)
	r.Get("/{externalID}/interests", h.ServeJoined)
	return r
}
