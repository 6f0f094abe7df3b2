package requests_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/features/requests"
	"github.com/dalemusser/campusconnect/internal/app/store/audit"
	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	"github.com/dalemusser/campusconnect/internal/app/system/auditlog"
	"github.com/dalemusser/campusconnect/internal/app/system/categories"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"github.com/dalemusser/campusconnect/internal/app/system/moderation"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/dalemusser/campusconnect/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h     *requests.Handler
	db    *mongo.Database
	audit *audit.Store
	fx    *testutil.Fixtures
}

func setup(t *testing.T, gateway *moderation.Gateway) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	auditStore := audit.New(db)
	h := requests.NewHandler(
		requeststore.New(db),
		categories.Default(),
		gateway,
		identity.NewResolver(nil),
		auditlog.New(auditStore, zap.NewNop(), auditlog.Config{}),
		zap.NewNop(),
	)
	return env{h: h, db: db, audit: auditStore, fx: testutil.NewFixtures(t, db)}
}

func tomorrow() string { return time.Now().AddDate(0, 0, 1).Format("2006-01-02") }

func sportsBody(user models.Identity, title string, teamSize int) map[string]any {
	return map[string]any{
		"user":        user,
		"title":       title,
		"description": "Friendly five-a-side after class",
		"category":    "sports",
		"details": map[string]any{
			"sport_name":  "Football",
			"team_size":   teamSize,
			"date":        tomorrow(),
			"venue":       "North field",
			"skill_level": "Intermediate",
		},
	}
}

func withID(r *http.Request, id string, kv ...string) *http.Request {
	return testutil.WithChiURLParams(r, append([]string{"id", id}, kv...)...)
}

func TestServeCreate(t *testing.T) {
	e := setup(t, testutil.NewModeration(t, "idiot"))
	alice := testutil.Identity("alice")

	t.Run("team size zero", func(t *testing.T) {
		rec := testutil.NewRecorder()
		e.h.ServeCreate(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/requests", sportsBody(alice, "Game", 0)))
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertKind(t, "ValidationFailed")
	})

	t.Run("unknown category", func(t *testing.T) {
		body := sportsBody(alice, "Game", 5)
		body["category"] = "concert"
		rec := testutil.NewRecorder()
		e.h.ServeCreate(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/requests", body))
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertKind(t, "InvalidCategory")
	})

	t.Run("no identity", func(t *testing.T) {
		rec := testutil.NewRecorder()
		e.h.ServeCreate(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/requests", sportsBody(models.Identity{}, "Game", 5)))
		rec.AssertStatus(t, http.StatusUnauthorized)
		rec.AssertKind(t, "AuthenticationRequired")
	})

	t.Run("toxic text is rejected and not stored", func(t *testing.T) {
		rec := testutil.NewRecorder()
		e.h.ServeCreate(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/requests", sportsBody(alice, "Only idiots apply", 5)))
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertKind(t, "ContentRejected")

		ctx, cancel := testutil.TestContext()
		defer cancel()
		n, err := e.db.Collection("requests").CountDocuments(ctx, map[string]string{"title": "Only idiots apply"})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("valid", func(t *testing.T) {
		rec := testutil.NewRecorder()
		e.h.ServeCreate(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/requests", sportsBody(alice, "Evening game", 5)))
		rec.AssertStatus(t, http.StatusCreated)

		var got models.Request
		rec.Decode(t, &got)
		assert.Equal(t, models.StatusOpen, got.Status)
		assert.Equal(t, alice.ExternalID, got.Creator.ExternalID)
		assert.Empty(t, got.InterestedUsers)
		require.NotNil(t, got.Sports)
		assert.Equal(t, 5, got.Sports.TeamSize)
	})
}

func TestServeCreate_ModerationDownFailsOpen(t *testing.T) {
	e := setup(t, testutil.UnreachableModeration(t))

	rec := testutil.NewRecorder()
	e.h.ServeCreate(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/requests", sportsBody(testutil.Identity("alice"), "Evening game", 5)))
	rec.AssertStatus(t, http.StatusCreated)
}

func TestInterestWorkflow(t *testing.T) {
	e := setup(t, moderation.New(moderation.Config{}, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice, bob := testutil.Identity("alice"), testutil.Identity("bob")
	req := e.fx.CreateRequest(ctx, alice, "Pickup game")
	id := req.ID.Hex()

	put := func(path string, user models.Identity, body map[string]any, kv ...string) *testutil.ResponseRecorder {
		if body == nil {
			body = map[string]any{}
		}
		body["user"] = user
		rec := testutil.NewRecorder()
		r := withID(testutil.NewJSONRequest(t, http.MethodPut, "/api/requests/"+id+path, body), id, kv...)
		switch path {
		case "/join":
			e.h.ServeJoin(rec, r)
		case "/status":
			e.h.ServeStatus(rec, r)
		case "/accept":
			e.h.ServeAccept(rec, r)
		case "/reject":
			e.h.ServeReject(rec, r)
		}
		return rec
	}

	put("/join", alice, nil).AssertKind(t, "SelfJoin")

	rec := put("/join", bob, nil)
	rec.AssertStatus(t, http.StatusOK)

	rec = put("/join", bob, nil)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertKind(t, "AlreadyJoined")

	rec = put("/accept", bob, nil, "userID", bob.ExternalID)
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertKind(t, "PermissionDenied")

	rec = put("/accept", alice, nil, "userID", "ext-nobody")
	rec.AssertStatus(t, http.StatusNotFound)

	rec = put("/accept", alice, nil, "userID", bob.ExternalID)
	rec.AssertStatus(t, http.StatusOK)
	var got models.Request
	rec.Decode(t, &got)
	require.Len(t, got.InterestedUsers, 1)
	assert.Equal(t, bob.ExternalID, got.InterestedUsers[0].ExternalID)
	assert.Equal(t, models.InterestAccepted, got.InterestedUsers[0].Status)

	rec = put("/reject", alice, nil, "userID", bob.ExternalID)
	rec.AssertStatus(t, http.StatusOK)
	rec.Decode(t, &got)
	assert.Equal(t, models.InterestRejected, got.InterestedUsers[0].Status)

	rec = put("/status", alice, map[string]any{"status": "completed"})
	rec.AssertKind(t, "ValidationFailed")

	rec = put("/status", alice, map[string]any{"status": "archived", "reason": "x"})
	rec.AssertKind(t, "InvalidTransition")

	rec = put("/status", bob, map[string]any{"status": "completed", "reason": "done"})
	rec.AssertKind(t, "PermissionDenied")

	rec = put("/status", alice, map[string]any{"status": "completed", "reason": "played it"})
	rec.AssertStatus(t, http.StatusOK)
	rec.Decode(t, &got)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "played it", got.StatusReason)

	carol := testutil.Identity("carol")
	rec = put("/join", carol, nil)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertKind(t, "RequestClosed")

	events, err := e.audit.ForRequest(ctx, id)
	require.NoError(t, err)
	types := map[string]int{}
	for _, ev := range events {
		types[ev.EventType]++
	}
	assert.Equal(t, 2, types[audit.EventInterestAccepted]+types[audit.EventInterestRejected])
	assert.Equal(t, 1, types[audit.EventRequestStatusChanged])
}

func TestServeDelete(t *testing.T) {
	e := setup(t, moderation.New(moderation.Config{}, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice, bob := testutil.Identity("alice"), testutil.Identity("bob")
	req := e.fx.CreateRequest(ctx, alice, "Trip to the lake")
	id := req.ID.Hex()

	del := func(user models.Identity) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		r := withID(testutil.NewJSONRequest(t, http.MethodDelete, "/api/requests/"+id,
			map[string]any{"user": user, "reason": "plans changed"}), id)
		e.h.ServeDelete(rec, r)
		return rec
	}

	rec := del(bob)
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertKind(t, "PermissionDenied")

	// Unchanged after the denied delete.
	rec = testutil.NewRecorder()
	e.h.ServeGet(rec, withID(testutil.NewJSONRequest(t, http.MethodGet, "/api/requests/"+id, nil), id))
	rec.AssertStatus(t, http.StatusOK)

	del(alice).AssertStatus(t, http.StatusOK)
	del(alice).AssertStatus(t, http.StatusNotFound)

	events, err := e.audit.ForRequest(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventRequestDeleted, events[0].EventType)
	assert.Equal(t, "plans changed", events[0].Reason)
}

func TestServeGet_BadID(t *testing.T) {
	e := setup(t, moderation.New(moderation.Config{}, zap.NewNop()))

	rec := testutil.NewRecorder()
	e.h.ServeGet(rec, withID(testutil.NewJSONRequest(t, http.MethodGet, "/api/requests/nope", nil), "nope"))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertKind(t, "ValidationFailed")
}

func TestServeList(t *testing.T) {
	e := setup(t, moderation.New(moderation.Config{}, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := testutil.Identity("alice")
	now := time.Now().UTC()
	e.fx.CreateRequestWith(ctx, alice, "Basketball tonight", models.StatusOpen, now.Add(-time.Hour))
	e.fx.CreateRequestWith(ctx, alice, "Chess club", models.StatusPaused, now.Add(-2*time.Hour))
	e.fx.CreateRequestWith(ctx, alice, "Old tennis match", models.StatusOpen, now.AddDate(0, -2, 0))

	list := func(target string) []models.Request {
		t.Helper()
		rec := testutil.NewRecorder()
		e.h.ServeList(rec, testutil.NewJSONRequest(t, http.MethodGet, target, nil))
		rec.AssertStatus(t, http.StatusOK)
		var body struct {
			Requests []models.Request `json:"requests"`
		}
		rec.Decode(t, &body)
		return body.Requests
	}

	all := list("/api/requests")
	require.Len(t, all, 3)
	assert.Equal(t, "Basketball tonight", all[0].Title, "newest first")

	assert.Len(t, list("/api/requests?category=sports"), 3)
	assert.Empty(t, list("/api/requests?category=trip"))
	assert.Len(t, list("/api/requests?status=open"), 2)
	assert.Len(t, list("/api/requests?within=week"), 2)
	assert.Len(t, list("/api/requests?q=chess"), 1)

	sorted := list("/api/requests?sort=title&order=asc")
	require.Len(t, sorted, 3)
	assert.Equal(t, "Basketball tonight", sorted[0].Title)
	assert.Equal(t, "Old tennis match", sorted[2].Title)

	paged := list("/api/requests?limit=2&page=2")
	assert.Len(t, paged, 1)

	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewJSONRequest(t, http.MethodGet, "/api/requests?category=concert", nil))
	rec.AssertKind(t, "InvalidCategory")

	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewJSONRequest(t, http.MethodGet, "/api/requests?within=year", nil))
	rec.AssertKind(t, "ValidationFailed")
}
