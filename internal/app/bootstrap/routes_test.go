package bootstrap

import (
	"net/http"
	"testing"

	"github.com/dalemusser/campusconnect/internal/app/system/ratelimit"
	"github.com/dalemusser/campusconnect/internal/app/system/requestid"
	"github.com/dalemusser/campusconnect/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, mutate ...func(*AppConfig)) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	require.NoError(t, EnsureSchema(ctx, nil, AppConfig{}, deps, zap.NewNop()))

	cfg := validAppConfig()
	cfg.ModerationEnabled = false
	cfg.AdminEmails = "dean@campus.edu"
	cfg.SessionKey = "test-session-key-0123456789abcdef0123"
	cfg.ClientURL = "http://localhost:5173"
	for _, m := range mutate {
		m(&cfg)
	}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(stopLimiters)
	return h
}

func TestBuildHandler_ReplacesLimiters(t *testing.T) {
	newTestRouter(t)
	first := append([]*ratelimit.Limiter(nil), limiters...)
	require.Len(t, first, 2)

	newTestRouter(t)
	assert.Len(t, limiters, 2)
	for _, l := range first {
		assert.NotContains(t, limiters, l)
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	require.NoError(t, EnsureSchema(ctx, nil, AppConfig{}, deps, zap.NewNop()))
	require.NoError(t, EnsureSchema(ctx, nil, AppConfig{}, deps, zap.NewNop()))

	names, err := db.ListCollectionNames(ctx, bson.M{})
	require.NoError(t, err)
	assert.Subset(t, names, []string{"users", "requests", "messages", "feedback", "audit_events"})
}

func TestBuildHandler_Routes(t *testing.T) {
	h := newTestRouter(t)
	student := testutil.Identity("alex")

	tests := []struct {
		name   string
		method string
		target string
		body   any
		ident  bool
		want   int
	}{
		{"health", http.MethodGet, "/health", nil, false, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", nil, false, http.StatusOK},
		{"upsert user", http.MethodPost, "/api/users", map[string]any{"user": student}, false, http.StatusOK},
		{"browse requests", http.MethodGet, "/api/requests", nil, false, http.StatusOK},
		{"broadcast messages", http.MethodGet, "/api/messages", nil, false, http.StatusOK},
		{"moderation check", http.MethodPost, "/api/moderation/check", map[string]string{"text": "see you at the game"}, false, http.StatusOK},
		{"admin stats without session", http.MethodGet, "/api/admin/stats", nil, true, http.StatusForbidden},
		{"audit log without session", http.MethodGet, "/api/admin/audit", nil, true, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/nowhere", nil, false, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, tc.method, tc.target, tc.body)
			if tc.ident {
				testutil.WithIdentityHeaders(req, student)
			}
			rec := testutil.NewRecorder()
			h.ServeHTTP(rec, req)
			rec.AssertStatus(t, tc.want)
			assert.NotEmpty(t, rec.Header().Get(requestid.Header))
		})
	}
}

func TestBuildHandler_CORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodOptions, "/api/requests", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "X-User-Id, Content-Type")
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = testutil.NewJSONRequest(t, http.MethodOptions, "/api/requests", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildHandler_AdminSessionFlow(t *testing.T) {
	h := newTestRouter(t)
	dean := testutil.Identity("dean")
	dean.Email = "Dean@Campus.edu"

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/session", map[string]any{"user": dean})
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = testutil.WithIdentityHeaders(testutil.NewJSONRequest(t, http.MethodGet, "/api/admin/stats", nil), dean)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "requests_by_status")

	req = testutil.WithIdentityHeaders(testutil.NewJSONRequest(t, http.MethodGet, "/api/admin/audit?category=admin", nil), dean)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "admin_session_started")
}

func TestBuildHandler_ModerationCheckRateLimited(t *testing.T) {
	h := newTestRouter(t, func(c *AppConfig) { c.ModerationCheckRateLimit = 2 })

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/moderation/check", map[string]string{"text": "hello"})
		rec := testutil.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "call %d", i+1)
	}

	// other routes are not affected
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/api/requests", nil))
	rec.AssertStatus(t, http.StatusOK)
}
