// Package messagestore persists chat messages. Messages are append-only.
package messagestore

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
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages"), now: func() time.Time { return time.Now().UTC() }}
}

// Insert stores m, assigning its id and timestamp.
func (s *Store) Insert(ctx context.Context, m models.Message) (models.Message, error) {
	m.ID = primitive.NewObjectID()
	m.Timestamp = s.now()
	if m.Kind == models.MessageBroadcast {
		m.Recipient = nil
	}
	if !m.IsFiltered {
		m.OriginalText = ""
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, apperr.Persistence(err)
	}
	return m, nil
}

func oldestFirst() bson.D {
	return bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}
}

// ListBroadcast returns broadcast messages, oldest first.
func (s *Store) ListBroadcast(ctx context.Context, page paging.Page) ([]models.Message, paging.Result, error) {
	return s.list(ctx, bson.M{"kind": models.MessageBroadcast}, page)
}

// ListDirect returns the direct messages exchanged between a and b in
// either direction, oldest first.
func (s *Store) ListDirect(ctx context.Context, a, b string, page paging.Page) ([]models.Message, paging.Result, error) {
	return s.list(ctx, bson.M{
		"kind": models.MessageDirect,
		"$or": bson.A{
			bson.M{"sender.external_id": a, "recipient.external_id": b},
			bson.M{"sender.external_id": b, "recipient.external_id": a},
		},
	}, page)
}

func (s *Store) list(ctx context.Context, q bson.M, page paging.Page) ([]models.Message, paging.Result, error) {
	cur, err := s.c.Find(ctx, q, page.Apply(options.Find().SetSort(oldestFirst())))
	if err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	return out, paging.Trim(&out, page), nil
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}
