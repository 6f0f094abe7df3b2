// Package requeststore persists requests and their embedded interest roster.
//
// Every lifecycle write (join, accept/reject, status change, delete) is a
// single conditional update whose filter encodes the preconditions. When the
// filter matches nothing the current document is read back only to explain
// why, using the same pure checks the filter expresses.
package requeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// joinAttempts bounds how often Join retries when the document changed
// between the conditional update and the diagnostic read.
const joinAttempts = 3

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("requests"), now: func() time.Time { return time.Now().UTC() }}
}

// ParseID converts a hex id from a URL into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid request id", map[string]string{"id": "must be a 24 character hex id"})
	}
	return oid, nil
}

func newestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
}

// Create inserts a validated request. Status, roster and timestamps are
// always set here regardless of what req carries.
func (s *Store) Create(ctx context.Context, req models.Request) (models.Request, error) {
	now := s.now()
	req.ID = primitive.NewObjectID()
	req.Status = models.StatusOpen
	req.StatusReason = ""
	req.StatusUpdatedAt = nil
	req.StatusUpdatedBy = ""
	req.InterestedUsers = []models.InterestEntry{}
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.Request{}, apperr.Persistence(err)
	}
	return req, nil
}

// GetByID loads one request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Request, error) {
	req, found, err := s.find(ctx, id)
	if err != nil {
		return models.Request{}, err
	}
	if !found {
		return models.Request{}, errRequestNotFound()
	}
	return req, nil
}

func (s *Store) find(ctx context.Context, id primitive.ObjectID) (models.Request, bool, error) {
	var req models.Request
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Request{}, false, nil
	}
	if err != nil {
		return models.Request{}, false, apperr.Persistence(err)
	}
	return req, true, nil
}

// Filter narrows List. The zero value lists everything.
type Filter struct {
	Category string
}

// List returns a page of requests, newest first.
func (s *Store) List(ctx context.Context, f Filter, page paging.Page) ([]models.Request, paging.Result, error) {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	return s.list(ctx, q, page)
}

// ListByCreator returns the requests created by externalID, newest first.
func (s *Store) ListByCreator(ctx context.Context, externalID string, page paging.Page) ([]models.Request, paging.Result, error) {
	return s.list(ctx, bson.M{"creator.external_id": externalID}, page)
}

// ListJoinedBy returns the requests externalID has expressed interest in,
// newest first.
func (s *Store) ListJoinedBy(ctx context.Context, externalID string, page paging.Page) ([]models.Request, paging.Result, error) {
	return s.list(ctx, bson.M{"interested_users.external_id": externalID}, page)
}

func (s *Store) list(ctx context.Context, q bson.M, page paging.Page) ([]models.Request, paging.Result, error) {
	cur, err := s.c.Find(ctx, q, page.Apply(options.Find().SetSort(newestFirst())))
	if err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	defer cur.Close(ctx)

	out := []models.Request{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, paging.Result{}, apperr.Persistence(err)
	}
	return out, paging.Trim(&out, page), nil
}

// Join appends a pending interest entry for joiner.
//
// The update only matches when the request exists, joiner is not its
// creator, it is not closed, and joiner has no entry yet, so two concurrent
// joins by the same user cannot both succeed.
func (s *Store) Join(ctx context.Context, id primitive.ObjectID, joiner models.Identity) (models.Request, error) {
	filter := bson.M{
		"_id":                          id,
		"creator.external_id":          bson.M{"$ne": joiner.ExternalID},
		"status":                       bson.M{"$nin": []string{models.StatusCompleted, models.StatusCancelled}},
		"interested_users.external_id": bson.M{"$ne": joiner.ExternalID},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < joinAttempts; attempt++ {
		now := s.now()
		entry := models.InterestEntry{
			ExternalID:  joiner.ExternalID,
			Email:       joiner.Email,
			DisplayName: joiner.DisplayName,
			Status:      models.InterestPending,
			JoinedAt:    now,
		}
		update := bson.M{
			"$push": bson.M{"interested_users": entry},
			"$set":  bson.M{"updated_at": now},
		}

		var out models.Request
		err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return models.Request{}, apperr.Persistence(err)
		}

		cur, found, err := s.find(ctx, id)
		if err != nil {
			return models.Request{}, err
		}
		var curPtr *models.Request
		if found {
			curPtr = &cur
		}
		if err := checkJoin(curPtr, joiner.ExternalID); err != nil {
			return models.Request{}, err
		}
		// The document changed between the update and the read; try again.
	}
	return models.Request{}, apperr.New(apperr.PersistenceError, "request changed while joining, please try again")
}

// Decide sets the status of targetID's interest entry to decision
// (accepted or rejected). Only the creator may decide, and re-deciding an
// entry overwrites the earlier decision.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, acting models.Identity, targetID, decision string) (models.Request, error) {
	if decision != models.InterestAccepted && decision != models.InterestRejected {
		return models.Request{}, apperr.Newf(apperr.InvalidTransition, "unknown decision %q", decision)
	}
	filter := bson.M{
		"_id":                          id,
		"creator.external_id":          acting.ExternalID,
		"interested_users.external_id": targetID,
	}
	update := bson.M{"$set": bson.M{
		"interested_users.$.status": decision,
		"updated_at":                s.now(),
	}}

	var out models.Request
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Request{}, apperr.Persistence(err)
	}

	cur, found, err := s.find(ctx, id)
	if err != nil {
		return models.Request{}, err
	}
	if !found {
		return models.Request{}, errRequestNotFound()
	}
	if err := checkDecide(cur, acting.ExternalID, targetID); err != nil {
		return models.Request{}, err
	}
	return models.Request{}, apperr.New(apperr.PersistenceError, "request changed while updating, please try again")
}

// StatusChange is the before/after of a successful UpdateStatus.
type StatusChange struct {
	From    string
	Request models.Request
}

// UpdateStatus moves a request to status. Any recognized status may follow
// any other; completed and cancelled need a reason. Checks run in the order
// not found, not the creator, unknown status, missing reason.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, acting models.Identity, status, reason string) (StatusChange, error) {
	if verr := checkStatus(status, reason); verr != nil {
		cur, found, err := s.find(ctx, id)
		if err != nil {
			return StatusChange{}, err
		}
		if !found {
			return StatusChange{}, errRequestNotFound()
		}
		if cur.Creator.ExternalID != acting.ExternalID {
			return StatusChange{}, errNotCreator("change the status of")
		}
		return StatusChange{}, verr
	}

	now := s.now()
	update := bson.M{"$set": bson.M{
		"status":            status,
		"status_reason":     reason,
		"status_updated_at": now,
		"status_updated_by": acting.ExternalID,
		"updated_at":        now,
	}}

	var before models.Request
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "creator.external_id": acting.ExternalID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		_, found, ferr := s.find(ctx, id)
		if ferr != nil {
			return StatusChange{}, ferr
		}
		if !found {
			return StatusChange{}, errRequestNotFound()
		}
		return StatusChange{}, errNotCreator("change the status of")
	}
	if err != nil {
		return StatusChange{}, apperr.Persistence(err)
	}

	after := before
	after.Status = status
	after.StatusReason = reason
	after.StatusUpdatedAt = &now
	after.StatusUpdatedBy = acting.ExternalID
	after.UpdatedAt = now
	return StatusChange{From: before.Status, Request: after}, nil
}

// Delete hard-deletes a request and returns what was removed. Unless
// override is set, only the creator may delete.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, acting models.Identity, override bool) (models.Request, error) {
	filter := bson.M{"_id": id}
	if !override {
		filter["creator.external_id"] = acting.ExternalID
	}

	var gone models.Request
	err := s.c.FindOneAndDelete(ctx, filter).Decode(&gone)
	if err == nil {
		return gone, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Request{}, apperr.Persistence(err)
	}

	_, found, err := s.find(ctx, id)
	if err != nil {
		return models.Request{}, err
	}
	if !found {
		return models.Request{}, errRequestNotFound()
	}
	return models.Request{}, errNotCreator("delete")
}

// Count returns the number of stored requests.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	return n, nil
}

// CountByStatus returns request counts keyed by status. Every recognized
// status is present, with zero when no request has it.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, apperr.Persistence(err)
	}

	out := make(map[string]int64, len(models.Statuses))
	for _, st := range models.Statuses {
		out[st] = 0
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
