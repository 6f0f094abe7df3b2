// internal/app/features/requests/routes.go
package requests

import "github.com/go-chi/chi/v5"

// Routes returns the router mounted at /api/requests.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeGet)
		r.Delete("/", h.ServeDelete)
		r.Put("/status", h.ServeStatus)
		r.Put("/join", h.ServeJoin)
		r.Put("/users/{userID}/accept", h.ServeAccept)
		r.Put("/users/{userID}/reject", h.ServeReject)
	})
	return r
}
