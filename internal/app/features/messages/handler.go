// internal/app/features/messages/handler.go
package messages

import (
	messagestore "github.com/dalemusser/campusconnect/internal/app/store/messages"
	userstore "github.com/dalemusser/campusconnect/internal/app/store/users"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"github.com/dalemusser/campusconnect/internal/app/system/moderation"
	"go.uber.org/zap"
)

// Handler serves the broadcast and direct chat endpoints.
type Handler struct {
	Messages   *messagestore.Store
	Users      *userstore.Store
	Moderation *moderation.Gateway
	Identity   *identity.Resolver
	Log        *zap.Logger
}

// NewHandler creates a messages Handler.
func NewHandler(msgs *messagestore.Store, users *userstore.Store, gateway *moderation.Gateway, resolver *identity.Resolver, logger *zap.Logger) *Handler {
	return &Handler{
		Messages:   msgs,
		Users:      users,
		Moderation: gateway,
		Identity:   resolver,
		Log:        logger,
	}
}
