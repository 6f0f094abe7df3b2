// internal/app/features/admin/session.go
package admin

import (
	"errors"
	"net/http"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"go.uber.org/zap"
)

type sessionInput struct {
	User *models.Identity `json:"user"`
}

type sessionResponse struct {
	Admin bool   `json:"admin"`
	Email string `json:"email,omitempty"`
}

// ServeSessionStart handles POST /api/admin/session. An allowlisted caller
// receives a signed session cookie bound to their email.
func (h *Handler) ServeSessionStart(w http.ResponseWriter, r *http.Request) {
	var in sessionInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	id, err := h.Identity.Resolve(r, in.User)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if err := h.Sessions.Begin(w, r, id); err != nil {
		if errors.Is(err, apperr.ErrPermissionDenied) {
			h.AuditLog.AdminSessionDenied(r.Context(), r, id)
		}
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.AdminSessionStarted(r.Context(), r, id)
	h.Log.Info("admin session started", zap.String("external_id", id.ExternalID))
	respond.JSON(w, http.StatusOK, sessionResponse{Admin: true, Email: id.Email})
}

// ServeSessionEnd handles DELETE /api/admin/session. It always clears the
// cookie; the caller's identity is only used for the audit trail.
func (h *Handler) ServeSessionEnd(w http.ResponseWriter, r *http.Request) {
	var in sessionInput
	_ = respond.DecodeJSON(r, &in)

	if err := h.Sessions.End(w, r); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if id, err := h.Identity.Resolve(r, in.User); err == nil {
		h.AuditLog.AdminSessionEnded(r.Context(), r, id)
	}
	respond.JSON(w, http.StatusOK, sessionResponse{Admin: false})
}
