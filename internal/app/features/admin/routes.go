// internal/app/features/admin/routes.go
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /api/admin. The session endpoints
// are open; everything else requires an admin session. auditLog is mounted
// at /audit and guards itself.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler, auditLog http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/session", h.ServeSessionStart)
	r.Delete("/session", h.ServeSessionEnd)

	r.Group(func(pr chi.Router) {
		pr.Use(requireAdmin)

		pr.Get("/stats", h.ServeStats)
		pr.Get("/requests", h.ServeRequests)
		pr.Delete("/requests/{id}", h.ServeDeleteRequest)
		pr.Get("/users", h.ServeUsers)
		pr.Get("/feedback", h.ServeFeedback)
	})

	if auditLog != nil {
		r.Mount("/audit", auditLog)
	}

	return r
}
