// internal/app/features/requests/list.go
package requests

import (
	"net/http"

	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/browse"
	"github.com/dalemusser/campusconnect/internal/app/system/categories"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Requests []models.Request `json:"requests"`
	paging.Result
}

// ServeList handles GET /api/requests. The store returns a page of
// requests newest first; the browse options (q, status, within,
// minInterested, sort, order) are applied to that page in memory.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	var filter requeststore.Filter
	if c := query.Get(r, "category"); c != "" && c != "all" {
		cat, ok := categories.Normalize(c)
		if !ok {
			respond.Error(w, h.Log, apperr.Newf(apperr.InvalidCategory, "unknown category %q", c))
			return
		}
		filter.Category = cat
	}
	opts, err := browse.Parse(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "request list")
	defer cancel()

	rows, page, err := h.Requests.List(ctx, filter, paging.Parse(r))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if opts.Active() {
		rows = browse.Apply(rows, opts, h.now())
	}
	respond.JSON(w, http.StatusOK, listResponse{Requests: rows, Result: page})
}

// ServeGet handles GET /api/requests/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "request get")
	defer cancel()

	req, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, req)
}
