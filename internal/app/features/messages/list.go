// internal/app/features/messages/list.go
package messages

import (
	"net/http"
	"strings"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type listResponse struct {
	Messages []models.Message `json:"messages"`
	paging.Result
}

func forViewer(rows []models.Message, viewerID string) []models.Message {
	for i := range rows {
		rows[i] = rows[i].ForViewer(viewerID)
	}
	return rows
}

// ServeBroadcastList handles GET /api/messages. The caller's identity is
// optional; without one, filtered originals are never shown.
func (h *Handler) ServeBroadcastList(w http.ResponseWriter, r *http.Request) {
	var viewer string
	if id, err := h.Identity.Resolve(r, nil); err == nil {
		viewer = id.ExternalID
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "message broadcast list")
	defer cancel()

	rows, page, err := h.Messages.ListBroadcast(ctx, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Messages: forViewer(rows, viewer), Result: page})
}

// ServeDirectList handles GET /api/messages/direct/{otherUserID}: the
// conversation between the caller and the other user.
func (h *Handler) ServeDirectList(w http.ResponseWriter, r *http.Request) {
	caller, err := h.Identity.Resolve(r, nil)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	other := strings.TrimSpace(chi.URLParam(r, "otherUserID"))
	if other == "" {
		respond.Error(w, h.Log, apperr.New(apperr.ValidationFailed, "other user is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "message direct list")
	defer cancel()

	rows, page, err := h.Messages.ListDirect(ctx, caller.ExternalID, other, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Messages: forViewer(rows, caller.ExternalID), Result: page})
}
