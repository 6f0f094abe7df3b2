// internal/app/features/auditlog/routes.go
package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log routes under the path where this router is
// mounted (typically "/api/admin/audit" from bootstrap). requireAdmin
// guards every route.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(requireAdmin)

		pr.Get("/", h.ServeList)
		pr.Get("/requests/{id}", h.ServeForRequest)
	})

	return r
}
