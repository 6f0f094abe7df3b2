// internal/app/features/requests/create.go
package requests

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/categories"
	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"go.uber.org/zap"
)

type createInput struct {
	User        *models.Identity `json:"user"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Details     json.RawMessage  `json:"details"`
}

// ServeCreate handles POST /api/requests.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	creator, err := h.Identity.Resolve(r, in.User)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	category, details, err := h.Categories.Parse(in.Category, in.Details)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	common, err := h.Categories.ValidateCommon(categories.Common{Title: in.Title, Description: in.Description})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "request create")
	defer cancel()

	verdict := h.Moderation.CheckRequest(ctx, strings.TrimSpace(common.Title+" "+common.Description))
	if verdict.Toxic {
		metrics.LifecycleEvents.WithLabelValues(metrics.EventRejected).Inc()
		h.Log.Info("request rejected by moderation",
			zap.String("creator", creator.ExternalID),
			zap.Float64("score", verdict.Score))
		respond.Error(w, h.Log, apperr.New(apperr.ContentRejected,
			"your request contains inappropriate content, please revise it and try again"))
		return
	}

	req := models.Request{
		Title:       common.Title,
		Description: common.Description,
		Category:    category,
		Creator: models.Identity{
			ExternalID:  creator.ExternalID,
			Email:       creator.Email,
			DisplayName: creator.DisplayName,
		},
	}
	details.Apply(&req)

	created, err := h.Requests.Create(ctx, req)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	metrics.LifecycleEvents.WithLabelValues(metrics.EventCreate).Inc()
	respond.JSON(w, http.StatusCreated, created)
}
