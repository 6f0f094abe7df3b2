// internal/app/features/users/users.go
package users

import (
	"net/http"
	"strings"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// upsertInput accepts the identity either wrapped as {"user": {...}} or as
// the bare identity object the sign-in flow posts.
type upsertInput struct {
	User *models.Identity `json:"user"`
	models.Identity
}

// ServeUpsert handles POST /api/users. It creates the profile on first
// sign-in and refreshes it afterwards.
func (h *Handler) ServeUpsert(w http.ResponseWriter, r *http.Request) {
	var in upsertInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	body := in.User
	if body == nil && !in.Identity.IsZero() {
		body = &in.Identity
	}

	id, err := h.Identity.Resolve(r, body)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user upsert")
	defer cancel()

	user, err := h.Users.Upsert(ctx, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Log.Debug("user signed in", zap.String("external_id", user.ExternalID))
	respond.JSON(w, http.StatusOK, user)
}

// ServeGet handles GET /api/users/{externalID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	externalID, ok := externalIDParam(w, r, h.Log)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user get")
	defer cancel()

	user, err := h.Users.GetByExternalID(ctx, externalID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

type requestPage struct {
	Requests []models.Request `json:"requests"`
	paging.Result
}

// ServeCreated handles GET /api/users/{externalID}/requests.
func (h *Handler) ServeCreated(w http.ResponseWriter, r *http.Request) {
	externalID, ok := externalIDParam(w, r, h.Log)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user requests")
	defer cancel()

	rows, page, err := h.Requests.ListByCreator(ctx, externalID, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, requestPage{Requests: rows, Result: page})
}

// ServeJoined handles GET /api/users/{externalID}/interests.
func (h *Handler) ServeJoined(w http.ResponseWriter, r *http.Request) {
	externalID, ok := externalIDParam(w, r, h.Log)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user interests")
	defer cancel()

	rows, page, err := h.Requests.ListJoinedBy(ctx, externalID, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, requestPage{Requests: rows, Result: page})
}

func externalIDParam(w http.ResponseWriter, r *http.Request, log *zap.Logger) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "externalID"))
	if id == "" {
		respond.Error(w, log, apperr.New(apperr.ValidationFailed, "user id is required"))
		return "", false
	}
	return id, true
}
