// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/store/audit"
	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

type listResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	paging.Result
}

// parseFilter reads category, event_type, actor_id, request_id, start_date
// and end_date. Dates are calendar days in UTC; end_date is inclusive.
func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		ActorID:   strings.TrimSpace(q.Get("actor_id")),
		RequestID: strings.TrimSpace(q.Get("request_id")),
		Page:      paging.Parse(r),
	}
	fields := map[string]string{}

	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		if t, err := time.Parse(dateLayout, s); err == nil {
			filter.StartTime = &t
		} else {
			fields["start_date"] = "must be YYYY-MM-DD"
		}
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		if t, err := time.Parse(dateLayout, s); err == nil {
			// End of day
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		} else {
			fields["end_date"] = "must be YYYY-MM-DD"
		}
	}
	if filter.StartTime != nil && filter.EndTime != nil && filter.EndTime.Before(*filter.StartTime) {
		fields["end_date"] = "must not be before start_date"
	}

	if len(fields) > 0 {
		return audit.QueryFilter{}, apperr.Validation("invalid audit filter", fields)
	}
	return filter, nil
}

// ServeList handles GET /api/admin/audit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, page, err := h.Audit.Query(ctx, filter)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	total, err := h.Audit.Count(ctx, filter)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Events: events, Total: total, Result: page})
}

// ServeForRequest handles GET /api/admin/audit/requests/{id}: the full
// history of one request, newest first.
func (h *Handler) ServeForRequest(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respond.Error(w, h.Log, apperr.New(apperr.ValidationFailed, "request id is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log request history")
	defer cancel()

	events, err := h.Audit.ForRequest(ctx, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"events": events})
}
