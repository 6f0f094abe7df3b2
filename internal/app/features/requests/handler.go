// internal/app/features/requests/handler.go
package requests

import (
	"time"

	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	"github.com/dalemusser/campusconnect/internal/app/system/auditlog"
	"github.com/dalemusser/campusconnect/internal/app/system/categories"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"github.com/dalemusser/campusconnect/internal/app/system/moderation"
	"go.uber.org/zap"
)

// Handler serves request creation, browsing and the interest lifecycle.
type Handler struct {
	Requests   *requeststore.Store
	Categories *categories.Validator
	Moderation *moderation.Gateway
	Identity   *identity.Resolver
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	now func() time.Time
}

// NewHandler creates a requests Handler.
func NewHandler(
	requests *requeststore.Store,
	cats *categories.Validator,
	gateway *moderation.Gateway,
	resolver *identity.Resolver,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Requests:   requests,
		Categories: cats,
		Moderation: gateway,
		Identity:   resolver,
		AuditLog:   audit,
		Log:        logger,
		now:        time.Now,
	}
}
