// internal/app/features/users/handler.go
package users

import (
	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	userstore "github.com/dalemusser/campusconnect/internal/app/store/users"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"go.uber.org/zap"
)

// Handler serves the user directory: sign-in upsert, profile lookup and
// the "my requests" / "my interests" views.
type Handler struct {
	Users    *userstore.Store
	Requests *requeststore.Store
	Identity *identity.Resolver
	Log      *zap.Logger
}

// NewHandler creates a users Handler.
func NewHandler(users *userstore.Store, requests *requeststore.Store, resolver *identity.Resolver, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Requests: requests,
		Identity: resolver,
		Log:      logger,
	}
}
