package requeststore

import (
	"strings"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/domain/models"
)

func errRequestNotFound() error {
	return apperr.New(apperr.NotFound, "request not found")
}

func errNotCreator(action string) error {
	return apperr.Newf(apperr.PermissionDenied, "only the creator can %s this request", action)
}

// checkJoin explains why joinerID may not join req. A nil req means the
// request does not exist. It returns nil when the join is allowed.
func checkJoin(req *models.Request, joinerID string) error {
	switch {
	case req == nil:
		return errRequestNotFound()
	case req.Creator.ExternalID == joinerID:
		return apperr.New(apperr.SelfJoin, "you cannot join your own request")
	case models.IsClosedStatus(req.Status):
		return apperr.Newf(apperr.RequestClosed, "this request is %s and no longer accepts interest", req.Status)
	}
	if _, ok := req.Interest(joinerID); ok {
		return apperr.New(apperr.AlreadyJoined, "you have already joined this request")
	}
	return nil
}

// checkDecide explains why actingID may not decide on targetID's entry.
func checkDecide(req models.Request, actingID, targetID string) error {
	if req.Creator.ExternalID != actingID {
		return errNotCreator("accept or reject users on")
	}
	if _, ok := req.Interest(targetID); !ok {
		return apperr.New(apperr.NotFound, "user not found in interested users list")
	}
	return nil
}

// checkStatus validates a requested status and its reason.
func checkStatus(status, reason string) error {
	if !models.IsValidStatus(status) {
		return apperr.Newf(apperr.InvalidTransition,
			"status must be one of %s", strings.Join(models.Statuses, ", "))
	}
	if models.IsClosedStatus(status) && strings.TrimSpace(reason) == "" {
		return apperr.Validation("a reason is required to mark a request "+status,
			map[string]string{"reason": "required when status is " + status})
	}
	return nil
}
