// Package auth manages the signed admin session cookie.
//
// An admin session is only ever issued to an identity whose email is on the
// configured allowlist, and it is bound to that email: presenting the cookie
// with a different identity does not grant admin rights.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	DefaultSessionName = "campusconnect-admin"

	emailKey    = "email"
	externalKey = "external_id"
	issuedKey   = "issued_at"
)

// SessionConfig configures AdminSessions.
type SessionConfig struct {
	Key       string
	Name      string
	Domain    string
	MaxAge    time.Duration
	Secure    bool
	Allowlist []string
}

// AdminSessions issues and checks admin session cookies.
type AdminSessions struct {
	store  *sessions.CookieStore
	name   string
	maxAge time.Duration
	allow  map[string]struct{}
	now    func() time.Time
}

// NewAdminSessions builds the cookie store. When no key is configured a
// random one is generated, which means sessions do not survive a restart.
func NewAdminSessions(cfg SessionConfig, logger *zap.Logger) *AdminSessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(cfg.Key)
	switch {
	case len(key) == 0:
		key = securecookie.GenerateRandomKey(32)
		logger.Warn("no session key configured; generated an ephemeral one")
	case len(key) < 32:
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}
	if cfg.Name == "" {
		cfg.Name = DefaultSessionName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 8 * time.Hour
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	store.MaxAge(store.Options.MaxAge)

	allow := make(map[string]struct{}, len(cfg.Allowlist))
	for _, e := range cfg.Allowlist {
		if e = normalizeEmail(e); e != "" {
			allow[e] = struct{}{}
		}
	}

	return &AdminSessions{store: store, name: cfg.Name, maxAge: cfg.MaxAge, allow: allow, now: time.Now}
}

// ParseAllowlist splits a comma separated list of emails.
func ParseAllowlist(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if e := normalizeEmail(part); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// IsAllowlisted reports whether email may hold an admin session.
func (a *AdminSessions) IsAllowlisted(email string) bool {
	_, ok := a.allow[normalizeEmail(email)]
	return ok
}

// Begin writes an admin session cookie for id.
func (a *AdminSessions) Begin(w http.ResponseWriter, r *http.Request, id models.Identity) error {
	if !a.IsAllowlisted(id.Email) {
		return apperr.New(apperr.PermissionDenied, "this account is not an administrator")
	}
	sess, _ := a.store.Get(r, a.name)
	sess.Values[emailKey] = normalizeEmail(id.Email)
	sess.Values[externalKey] = id.ExternalID
	sess.Values[issuedKey] = a.now().Unix()
	if err := sess.Save(r, w); err != nil {
		return apperr.Wrap(apperr.PersistenceError, "save admin session", err)
	}
	return nil
}

// End expires the admin session cookie.
func (a *AdminSessions) End(w http.ResponseWriter, r *http.Request) error {
	sess, _ := a.store.Get(r, a.name)
	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	if err := sess.Save(r, w); err != nil {
		return apperr.Wrap(apperr.PersistenceError, "clear admin session", err)
	}
	return nil
}

// Check returns nil when r carries a live admin session bound to id and
// id is still on the allowlist.
func (a *AdminSessions) Check(r *http.Request, id models.Identity) error {
	denied := apperr.New(apperr.PermissionDenied, "administrator access required")
	if !a.IsAllowlisted(id.Email) {
		return denied
	}
	sess, err := a.store.Get(r, a.name)
	if err != nil || sess.IsNew {
		return denied
	}
	email, _ := sess.Values[emailKey].(string)
	issued, _ := sess.Values[issuedKey].(int64)
	if email != normalizeEmail(id.Email) {
		return denied
	}
	if a.now().Sub(time.Unix(issued, 0)) > a.maxAge {
		return denied
	}
	return nil
}
