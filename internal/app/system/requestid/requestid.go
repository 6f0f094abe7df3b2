// Package requestid tags each HTTP request with a correlation id.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header carries the correlation id in both directions.
const Header = "X-Request-Id"

type ctxKey struct{}

// Middleware reuses a well-formed incoming X-Request-Id or mints a new
// UUID, echoes it on the response, and stores it on the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// FromContext returns the correlation id, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
