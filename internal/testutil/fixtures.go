package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParams adds chi URL parameters (key, value pairs) to the request
// context for handler tests that call chi.URLParam.
func WithChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Identity returns a test identity for a short name, e.g. "alice" →
// ext-alice / alice@campus.test.
func Identity(name string) models.Identity {
	return models.Identity{
		ExternalID:  "ext-" + name,
		Email:       name + "@campus.test",
		DisplayName: name,
	}
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user profile for id.
func (f *Fixtures) CreateUser(ctx context.Context, id models.Identity) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		ExternalID:    id.ExternalID,
		Email:         id.Email,
		DisplayName:   id.DisplayName,
		DisplayNameCI: text.Fold(id.DisplayName),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateRequest inserts an open sports request created by creator.
func (f *Fixtures) CreateRequest(ctx context.Context, creator models.Identity, title string) models.Request {
	f.t.Helper()
	return f.CreateRequestWith(ctx, creator, title, models.StatusOpen, time.Now().UTC())
}

// CreateRequestWith inserts a sports request with an explicit status and
// creation time.
func (f *Fixtures) CreateRequestWith(ctx context.Context, creator models.Identity, title, status string, createdAt time.Time) models.Request {
	f.t.Helper()

	req := models.Request{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "fixture request",
		Category:    models.CategorySports,
		Sports: &models.SportsDetails{
			SportName:  "Football",
			TeamSize:   5,
			Date:       createdAt.AddDate(0, 0, 7),
			Venue:      "Main field",
			SkillLevel: "Beginner",
		},
		Creator:         creator,
		Status:          status,
		InterestedUsers: []models.InterestEntry{},
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if _, err := f.db.Collection("requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test request: %v", err)
	}
	return req
}
