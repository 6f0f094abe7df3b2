// internal/app/features/moderation/handler.go
package moderation

import (
	"net/http"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	gateway "github.com/dalemusser/campusconnect/internal/app/system/moderation"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler lets the client pre-check text before submitting it.
type Handler struct {
	Gateway *gateway.Gateway
	Log     *zap.Logger
}

// NewHandler creates a moderation Handler.
func NewHandler(g *gateway.Gateway, logger *zap.Logger) *Handler {
	return &Handler{Gateway: g, Log: logger}
}

type checkInput struct {
	Text string `json:"text"`
}

type checkResponse struct {
	IsOffensive bool    `json:"is_offensive"`
	Score       float64 `json:"score"`
	Checked     bool    `json:"checked"`
}

// ServeCheck handles POST /api/moderation/check. It uses the chat
// threshold and fails open like every other moderation call.
func (h *Handler) ServeCheck(w http.ResponseWriter, r *http.Request) {
	var in checkInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	text := textsanitize.Text(in.Text)
	if text == "" {
		respond.Error(w, h.Log, apperr.Validation("text is required", map[string]string{"text": "required"}))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "moderation check")
	defer cancel()

	v := h.Gateway.Check(ctx, gateway.ContextCheck, text, h.Gateway.MessageThreshold())
	respond.JSON(w, http.StatusOK, checkResponse{IsOffensive: v.Toxic, Score: v.Score, Checked: v.Checked})
}
