// Package respond writes JSON responses and maps apperr kinds to HTTP status.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/limits"
	"go.uber.org/zap"
)

// errorBody is the wire shape of every failure: {kind, message[, fields]}.
type errorBody struct {
	Kind    apperr.Kind       `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status maps an error kind to its HTTP status code.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound, apperr.RecipientNotFound:
		return http.StatusNotFound
	case apperr.PermissionDenied:
		return http.StatusForbidden
	case apperr.AuthenticationRequired:
		return http.StatusUnauthorized
	case apperr.AlreadyJoined:
		return http.StatusConflict
	case apperr.ValidationFailed, apperr.InvalidCategory, apperr.InvalidTransition,
		apperr.ContentRejected, apperr.SelfJoin, apperr.RequestClosed:
		return http.StatusBadRequest
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {kind, message}. Storage failures are logged and
// reported with a generic message so driver details never reach clients.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	e := apperr.As(err)
	status := Status(e.Kind)
	msg := e.Message
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", zap.String("kind", string(e.Kind)), zap.Error(err))
		}
		msg = "something went wrong, please try again"
	}
	JSON(w, status, errorBody{Kind: e.Kind, Message: msg, Fields: e.Fields})
}

// DecodeJSON decodes the request body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, limits.MaxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Wrap(apperr.ValidationFailed, "request body is not valid JSON", err)
	}
	return nil
}
