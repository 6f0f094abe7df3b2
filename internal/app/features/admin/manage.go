// internal/app/features/admin/manage.go
package admin

import (
	"net/http"
	"time"

	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/authz"
	"github.com/dalemusser/campusconnect/internal/app/system/categories"
	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/stats"
	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type statsResponse struct {
	stats.Snapshot
	GeneratedAt time.Time `json:"generated_at"`
}

// ServeStats handles GET /api/admin/stats. Counts are read live and the
// gauges are refreshed as a side effect.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "admin stats")
	defer cancel()

	snap, err := h.Stats.Collect(ctx)
	if err != nil {
		respond.Error(w, h.Log, apperr.Persistence(err))
		return
	}
	stats.Publish(snap)
	respond.JSON(w, http.StatusOK, statsResponse{Snapshot: snap, GeneratedAt: time.Now().UTC()})
}

// ServeRequests handles GET /api/admin/requests (?category&page&limit).
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	var filter requeststore.Filter
	if c := query.Get(r, "category"); c != "" && c != "all" {
		cat, ok := categories.Normalize(c)
		if !ok {
			respond.Error(w, h.Log, apperr.Newf(apperr.InvalidCategory, "unknown category %q", c))
			return
		}
		filter.Category = cat
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin requests")
	defer cancel()

	rows, page, err := h.Requests.List(ctx, filter, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, struct {
		Requests []models.Request `json:"requests"`
		paging.Result
	}{rows, page})
}

// ServeUsers handles GET /api/admin/users.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin users")
	defer cancel()

	rows, page, err := h.Users.List(ctx, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, struct {
		Users []models.User `json:"users"`
		paging.Result
	}{rows, page})
}

// ServeFeedback handles GET /api/admin/feedback.
func (h *Handler) ServeFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin feedback")
	defer cancel()

	rows, page, err := h.Feedback.List(ctx, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, struct {
		Feedback []models.Feedback `json:"feedback"`
		paging.Result
	}{rows, page})
}

type deleteInput struct {
	Reason string `json:"reason"`
}

// ServeDeleteRequest handles DELETE /api/admin/requests/{id}: the
// administrative override of the creator-only delete. A reason is required.
func (h *Handler) ServeDeleteRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.Admin(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	var in deleteInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	reason := textsanitize.Text(in.Reason)
	if reason == "" {
		reason = textsanitize.Text(r.URL.Query().Get("reason"))
	}
	if reason == "" {
		respond.Error(w, h.Log, apperr.Validation("a reason is required", map[string]string{"reason": "required"}))
		return
	}
	id, err := requeststore.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin request delete")
	defer cancel()

	gone, err := h.Requests.Delete(ctx, id, actor, true)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	metrics.LifecycleEvents.WithLabelValues(metrics.EventDelete).Inc()
	h.AuditLog.AdminRequestDeleted(ctx, r, actor, gone, reason)
	h.Log.Info("request removed by administrator",
		zap.String("request_id", gone.ID.Hex()),
		zap.String("creator", gone.Creator.ExternalID),
		zap.String("admin", actor.ExternalID))
	respond.JSON(w, http.StatusOK, map[string]any{"deleted": true, "id": gone.ID.Hex()})
}
