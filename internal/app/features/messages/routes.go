// internal/app/features/messages/routes.go
package messages

import "github.com/go-chi/chi/v5"

// Routes returns the router mounted at /api/messages.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeBroadcastPost)
	r.Get("/", h.ServeBroadcastList)
	r.Post("/direct", h.ServeDirectPost)
	r.Get("/direct/{otherUserID}", h.ServeDirectList)
	return r
}
