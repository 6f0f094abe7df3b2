// Package identity works out who is calling.
//
// A call is attributed, in order of preference, to a verified bearer token
// (when a token secret is configured), to the "user" object in a JSON body,
// or to the X-User-Id / X-User-Email / X-User-Name headers.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
	"github.com/dalemusser/campusconnect/internal/domain/models"
)

// Header names for identity on body-less calls.
const (
	HeaderID    = "X-User-Id"
	HeaderEmail = "X-User-Email"
	HeaderName  = "X-User-Name"
)

// Resolver resolves the caller's identity. A nil Tokens disables bearer tokens.
type Resolver struct {
	Tokens *TokenVerifier
}

// NewResolver returns a Resolver.
func NewResolver(tokens *TokenVerifier) *Resolver {
	return &Resolver{Tokens: tokens}
}

// Resolve returns the caller's identity. body is the "user" object from the
// request payload and may be nil.
func (res *Resolver) Resolve(r *http.Request, body *models.Identity) (models.Identity, error) {
	if res != nil && res.Tokens != nil {
		if tok, ok := bearer(r); ok {
			id, err := res.Tokens.Verify(tok)
			if err != nil {
				return models.Identity{}, apperr.Wrap(apperr.AuthenticationRequired, err.Error(), err)
			}
			return complete(Clean(id))
		}
	}

	if body != nil && !body.IsZero() {
		return complete(Clean(*body))
	}

	return complete(Clean(models.Identity{
		ExternalID:  r.Header.Get(HeaderID),
		Email:       r.Header.Get(HeaderEmail),
		DisplayName: r.Header.Get(HeaderName),
	}))
}

// Clean sanitizes identity fields and lowercases the email.
func Clean(id models.Identity) models.Identity {
	return models.Identity{
		ExternalID:  strings.TrimSpace(id.ExternalID),
		Email:       strings.ToLower(textsanitize.Line(id.Email)),
		DisplayName: textsanitize.Line(id.DisplayName),
		AvatarURL:   strings.TrimSpace(id.AvatarURL),
	}
}

func complete(id models.Identity) (models.Identity, error) {
	if id.ExternalID == "" || id.Email == "" {
		return models.Identity{}, apperr.New(apperr.AuthenticationRequired, "sign in to continue")
	}
	return id, nil
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

type ctxKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(models.Identity)
	return id, ok
}
