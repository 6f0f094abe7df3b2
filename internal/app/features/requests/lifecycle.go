// internal/app/features/requests/lifecycle.go
package requests

import (
	"net/http"

	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// actionInput is the body shared by the lifecycle endpoints. Fields an
// endpoint does not use are ignored.
type actionInput struct {
	User   *models.Identity `json:"user"`
	Status string           `json:"status"`
	Reason string           `json:"reason"`
}

func requestID(r *http.Request) (primitive.ObjectID, error) {
	return requeststore.ParseID(chi.URLParam(r, "id"))
}

// begin decodes the body, parses the id and resolves the caller.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, models.Identity, actionInput, bool) {
	var in actionInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return primitive.NilObjectID, models.Identity{}, in, false
	}
	id, err := requestID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return primitive.NilObjectID, models.Identity{}, in, false
	}
	actor, err := h.Identity.Resolve(r, in.User)
	if err != nil {
		respond.Error(w, h.Log, err)
		return primitive.NilObjectID, models.Identity{}, in, false
	}
	in.Reason = textsanitize.Text(in.Reason)
	return id, actor, in, true
}

// ServeDelete handles DELETE /api/requests/{id}. Only the creator may delete.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, actor, in, ok := h.begin(w, r)
	if !ok {
		return
	}
	if in.Reason == "" {
		in.Reason = textsanitize.Text(r.URL.Query().Get("reason"))
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "request delete")
	defer cancel()

	gone, err := h.Requests.Delete(ctx, id, actor, false)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	metrics.LifecycleEvents.WithLabelValues(metrics.EventDelete).Inc()
	h.AuditLog.RequestDeleted(ctx, r, actor, gone, in.Reason)
	respond.JSON(w, http.StatusOK, map[string]any{"deleted": true, "id": gone.ID.Hex()})
}

// ServeStatus handles PUT /api/requests/{id}/status.
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	id, actor, in, ok := h.begin(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "request status")
	defer cancel()

	change, err := h.Requests.UpdateStatus(ctx, id, actor, in.Status, in.Reason)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	metrics.LifecycleEvents.WithLabelValues(metrics.EventStatusChange).Inc()
	h.AuditLog.StatusChanged(ctx, r, actor, id.Hex(), change.From, change.Request.Status, in.Reason)
	respond.JSON(w, http.StatusOK, change.Request)
}

// ServeJoin handles PUT /api/requests/{id}/join.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	id, actor, _, ok := h.begin(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "request join")
	defer cancel()

	req, err := h.Requests.Join(ctx, id, actor)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	metrics.LifecycleEvents.WithLabelValues(metrics.EventJoin).Inc()
	h.Log.Debug("interest recorded",
		zap.String("request_id", id.Hex()),
		zap.String("external_id", actor.ExternalID))
	respond.JSON(w, http.StatusOK, req)
}

// ServeAccept handles PUT /api/requests/{id}/users/{userID}/accept.
func (h *Handler) ServeAccept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.InterestAccepted, metrics.EventAccept)
}

// ServeReject handles PUT /api/requests/{id}/users/{userID}/reject.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.InterestRejected, metrics.EventReject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision, event string) {
	id, actor, _, ok := h.begin(w, r)
	if !ok {
		return
	}
	target := chi.URLParam(r, "userID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "request "+decision)
	defer cancel()

	req, err := h.Requests.Decide(ctx, id, actor, target, decision)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	metrics.LifecycleEvents.WithLabelValues(event).Inc()
	h.AuditLog.InterestDecided(ctx, r, actor, id.Hex(), target, decision)
	respond.JSON(w, http.StatusOK, req)
}
