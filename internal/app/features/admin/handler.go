// internal/app/features/admin/handler.go
package admin

import (
	feedbackstore "github.com/dalemusser/campusconnect/internal/app/store/feedback"
	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	userstore "github.com/dalemusser/campusconnect/internal/app/store/users"
	"github.com/dalemusser/campusconnect/internal/app/system/auditlog"
	"github.com/dalemusser/campusconnect/internal/app/system/auth"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"github.com/dalemusser/campusconnect/internal/app/system/stats"
	"go.uber.org/zap"
)

// Handler serves the administration API. Every route except the session
// endpoints sits behind authz.Gate.RequireAdmin.
type Handler struct {
	Sessions *auth.AdminSessions
	Identity *identity.Resolver
	Requests *requeststore.Store
	Users    *userstore.Store
	Feedback *feedbackstore.Store
	Stats    *stats.Collector
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler creates an admin Handler.
func NewHandler(
	sessions *auth.AdminSessions,
	resolver *identity.Resolver,
	requests *requeststore.Store,
	users *userstore.Store,
	feedback *feedbackstore.Store,
	collector *stats.Collector,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Sessions: sessions,
		Identity: resolver,
		Requests: requests,
		Users:    users,
		Feedback: feedback,
		Stats:    collector,
		AuditLog: audit,
		Log:      logger,
	}
}
