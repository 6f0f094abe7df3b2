package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrEmailTaken is wrapped in the error returned when an upsert would give a
// user an email already held by a different external id.
var ErrEmailTaken = errors.New("email is registered to another account")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Upsert creates the profile for id.ExternalID or refreshes its email,
// display name and avatar. created_at is preserved, and an empty avatar
// never clears a stored one.
//
// The write is a single upsert keyed by the unique external_id index, so
// concurrent sign-ins cannot create two records; a duplicate-key error from
// losing the insert race is retried once as an update.
func (s *Store) Upsert(ctx context.Context, id models.Identity) (models.User, error) {
	now := time.Now().UTC()
	set := bson.M{
		"email":           id.Email,
		"display_name":    id.DisplayName,
		"display_name_ci": text.Fold(id.DisplayName),
		"updated_at":      now,
	}
	onInsert := bson.M{"created_at": now}
	if id.AvatarURL != "" {
		set["avatar_url"] = id.AvatarURL
	} else {
		onInsert["avatar_url"] = ""
	}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	filter := bson.M{"external_id": id.ExternalID}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if err != nil && wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, apperr.Wrap(apperr.ValidationFailed, ErrEmailTaken.Error(), ErrEmailTaken)
		}
		return models.User{}, apperr.Persistence(err)
	}
	return u, nil
}

// GetByExternalID loads a profile.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return models.User{}, apperr.Persistence(err)
	}
	return u, nil
}

// List returns profiles ordered by display name.
func (s *Store) List(ctx context.Context, page paging.Page) ([]models.User, paging.Result, error) {
	opts := page.Apply(options.Find().SetSort(bson.D{{Key: "display_name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	return users, paging.Trim(&users, page), nil
}

// Count returns the number of stored profiles.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}
