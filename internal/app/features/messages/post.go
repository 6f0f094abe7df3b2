// internal/app/features/messages/post.go
package messages

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/limits"
	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"go.uber.org/zap"
)

type postInput struct {
	User        *models.Identity `json:"user"`
	Text        string           `json:"text"`
	RecipientID string           `json:"recipient_id"`
}

func (h *Handler) decodePost(w http.ResponseWriter, r *http.Request) (postInput, models.Identity, bool) {
	var in postInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return in, models.Identity{}, false
	}
	sender, err := h.Identity.Resolve(r, in.User)
	if err != nil {
		respond.Error(w, h.Log, err)
		return in, models.Identity{}, false
	}
	in.Text = textsanitize.Text(in.Text)
	switch {
	case in.Text == "":
		respond.Error(w, h.Log, apperr.Validation("message text is required",
			map[string]string{"text": "required"}))
		return in, models.Identity{}, false
	case utf8.RuneCountInString(in.Text) > limits.MaxMessageLength:
		respond.Error(w, h.Log, apperr.Validation("message is too long",
			map[string]string{"text": "must be at most " + strconv.Itoa(limits.MaxMessageLength) + " characters"}))
		return in, models.Identity{}, false
	}
	sender.AvatarURL = ""
	return in, sender, true
}

// moderate runs text through the classifier. A flagged message is still
// stored, with its text redacted and the original kept aside.
func (h *Handler) moderate(ctx context.Context, m *models.Message) {
	v := h.Moderation.CheckMessage(ctx, m.Text)
	if !v.Toxic {
		return
	}
	m.IsFiltered = true
	m.OriginalText = m.Text
	m.Text = models.RedactedText
	h.Log.Info("message redacted",
		zap.String("kind", m.Kind),
		zap.String("sender", m.Sender.ExternalID),
		zap.Float64("score", v.Score))
}

func (h *Handler) store(ctx context.Context, w http.ResponseWriter, m models.Message) {
	h.moderate(ctx, &m)
	saved, err := h.Messages.Insert(ctx, m)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	metrics.MessagesPosted.WithLabelValues(saved.Kind, strconv.FormatBool(saved.IsFiltered)).Inc()
	respond.JSON(w, http.StatusCreated, saved)
}

// ServeBroadcastPost handles POST /api/messages.
func (h *Handler) ServeBroadcastPost(w http.ResponseWriter, r *http.Request) {
	in, sender, ok := h.decodePost(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "message broadcast")
	defer cancel()

	h.store(ctx, w, models.Message{
		Kind:   models.MessageBroadcast,
		Text:   in.Text,
		Sender: sender,
	})
}

// ServeDirectPost handles POST /api/messages/direct.
func (h *Handler) ServeDirectPost(w http.ResponseWriter, r *http.Request) {
	in, sender, ok := h.decodePost(w, r)
	if !ok {
		return
	}
	recipientID := strings.TrimSpace(in.RecipientID)
	if recipientID == "" {
		respond.Error(w, h.Log, apperr.Validation("recipient is required",
			map[string]string{"recipient_id": "required"}))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "message direct")
	defer cancel()

	recipient, err := h.Users.GetByExternalID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = apperr.Newf(apperr.RecipientNotFound, "no user %q to send to", recipientID)
		}
		respond.Error(w, h.Log, err)
		return
	}
	snap := recipient.Snapshot()

	h.store(ctx, w, models.Message{
		Kind:      models.MessageDirect,
		Text:      in.Text,
		Sender:    sender,
		Recipient: &snap,
	})
}
