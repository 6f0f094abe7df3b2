// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryRequests = "requests"
	CategoryAdmin    = "admin"
)

// Request event types
const (
	EventRequestDeleted       = "request_deleted"
	EventRequestStatusChanged = "request_status_changed"
	EventInterestAccepted     = "interest_accepted"
	EventInterestRejected     = "interest_rejected"
)

// Admin event types
const (
	EventAdminSessionStarted = "admin_session_started"
	EventAdminSessionDenied  = "admin_session_denied"
	EventAdminSessionEnded   = "admin_session_ended"
	EventAdminRequestDeleted = "admin_request_deleted"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// Who and what. Ids are external identity ids and request hex ids.
	ActorID   string `bson:"actor_id" json:"actor_id"`
	ActorMail string `bson:"actor_email,omitempty" json:"actor_email,omitempty"`
	RequestID string `bson:"request_id,omitempty" json:"request_id,omitempty"`
	TargetID  string `bson:"target_id,omitempty" json:"target_id,omitempty"`

	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`

	IP            string `bson:"ip" json:"ip"`
	UserAgent     string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CorrelationID string `bson:"correlation_id,omitempty" json:"correlation_id,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	Category  string
	EventType string
	ActorID   string
	RequestID string
	StartTime *time.Time
	EndTime   *time.Time
	Page      paging.Page
}

func (f QueryFilter) bson() bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.ActorID != "" {
		q["actor_id"] = f.ActorID
	}
	if f.RequestID != "" {
		q["request_id"] = f.RequestID
	}
	if f.StartTime != nil || f.EndTime != nil {
		ts := bson.M{}
		if f.StartTime != nil {
			ts["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			ts["$lte"] = *f.EndTime
		}
		q["timestamp"] = ts
	}
	return q
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns events matching filter, newest first, with a look-ahead
// page result.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, paging.Result, error) {
	page := filter.Page
	if page.Size == 0 {
		page = paging.Default()
	}
	opts := page.Apply(options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}))

	cursor, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, paging.Result{}, err
	}
	return events, paging.Trim(&events, page), nil
}

// Count returns the number of events matching filter.
func (s *Store) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.bson())
}

// ForRequest returns the history of one request, newest first.
func (s *Store) ForRequest(ctx context.Context, requestID string) ([]Event, error) {
	events, _, err := s.Query(ctx, QueryFilter{RequestID: requestID, Page: paging.Page{Number: 1, Size: paging.MaxPageSize}})
	return events, err
}
