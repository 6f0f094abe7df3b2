// Package feedbackstore persists user feedback. Entries are append-only.
package feedbackstore

import (
	"context"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedback")}
}

// Insert stores f, assigning its id and submission time.
func (s *Store) Insert(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	f.ID = primitive.NewObjectID()
	f.SubmittedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Feedback{}, apperr.Persistence(err)
	}
	return f, nil
}

// List returns feedback, newest first.
func (s *Store) List(ctx context.Context, page paging.Page) ([]models.Feedback, paging.Result, error) {
	opts := page.Apply(options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: -1}}))
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	return out, paging.Trim(&out, page), nil
}

// Count returns the number of feedback entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}
