// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"go.uber.org/zap"
)

// SessionChecker verifies an admin session for an identity.
type SessionChecker interface {
	Check(r *http.Request, id models.Identity) error
}

// Gate guards the administration routes.
type Gate struct {
	Resolver *identity.Resolver
	Sessions SessionChecker
	Log      *zap.Logger
}

// RequireAdmin resolves the caller from token or headers and requires an
// admin session bound to them. The identity is placed on the context.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Resolver.Resolve(r, nil)
		if err != nil {
			respond.Error(w, g.Log, err)
			return
		}
		if err := g.Sessions.Check(r, id); err != nil {
			g.Log.Warn("admin access denied",
				zap.String("external_id", id.ExternalID),
				zap.String("path", r.URL.Path))
			respond.Error(w, g.Log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
	})
}

// Admin returns the admin identity placed on the context by RequireAdmin.
func Admin(r *http.Request) (models.Identity, error) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		return models.Identity{}, apperr.New(apperr.PermissionDenied, "administrator access required")
	}
	return id, nil
}

// IsOwner reports whether actor created something owned by owner.
func IsOwner(actor, owner models.Identity) bool {
	return actor.ExternalID != "" && actor.ExternalID == owner.ExternalID
}
