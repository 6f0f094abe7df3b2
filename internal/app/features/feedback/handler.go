// internal/app/features/feedback/handler.go
package feedback

import (
	"net/http"

	feedbackstore "github.com/dalemusser/campusconnect/internal/app/store/feedback"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/campusconnect/internal/app/system/validate"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler accepts product feedback.
type Handler struct {
	Feedback *feedbackstore.Store
	Identity *identity.Resolver
	Log      *zap.Logger

	validate *validator.Validate
}

// NewHandler creates a feedback Handler.
func NewHandler(store *feedbackstore.Store, resolver *identity.Resolver, logger *zap.Logger) *Handler {
	return &Handler{
		Feedback: store,
		Identity: resolver,
		Log:      logger,
		validate: validate.New(),
	}
}

type submitInput struct {
	User            *models.Identity `json:"user"`
	IssueText       string           `json:"issue_text" validate:"required,max=5000"`
	ImprovementText string           `json:"improvement_text" validate:"required,max=5000"`
}

// ServeSubmit handles POST /api/feedback.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	var in submitInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	author, err := h.Identity.Resolve(r, in.User)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	in.IssueText = textsanitize.Text(in.IssueText)
	in.ImprovementText = textsanitize.Text(in.ImprovementText)
	if err := h.validate.Struct(in); err != nil {
		respond.Error(w, h.Log, validate.FieldErrors(err, "please describe both the issue and the improvement", nil))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "feedback submit")
	defer cancel()

	author.AvatarURL = ""
	saved, err := h.Feedback.Insert(ctx, models.Feedback{
		Author:          author,
		IssueText:       in.IssueText,
		ImprovementText: in.ImprovementText,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}
