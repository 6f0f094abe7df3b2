// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/campusconnect/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collections lists every collection the service writes to.
var Collections = []string{"users", "requests", "messages", "feedback", "audit_events"}

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("requests", requestsSchema())
	ensure("messages", messagesSchema())
	ensure("feedback", feedbackSchema())

	// Audit events are written by one store with a fixed shape.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			logger.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enum(values []string) bson.A {
	out := bson.A{}
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func identitySchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"external_id", "email"},
		"properties": bson.M{
			"external_id":  bson.M{"bsonType": "string", "minLength": 1},
			"email":        bson.M{"bsonType": "string", "minLength": 1},
			"display_name": bson.M{"bsonType": "string"},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"external_id", "email", "created_at"},
			"properties": bson.M{
				"external_id":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":           bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"display_name":    bson.M{"bsonType": "string"},
				"display_name_ci": bson.M{"bsonType": "string"},
				"avatar_url":      bson.M{"bsonType": "string"},
				"created_at":      bson.M{"bsonType": "date"},
				"updated_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}

func requestsSchema() bson.M {
	interest := bson.M{
		"bsonType": "object",
		"required": bson.A{"external_id", "status", "joined_at"},
		"properties": bson.M{
			"external_id": bson.M{"bsonType": "string", "minLength": 1},
			"status":      bson.M{"enum": bson.A{models.InterestPending, models.InterestAccepted, models.InterestRejected}},
			"joined_at":   bson.M{"bsonType": "date"},
		},
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "category", "creator", "status", "interested_users", "created_at"},
			"properties": bson.M{
				"title":            bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description":      bson.M{"bsonType": "string"},
				"category":         bson.M{"enum": enum(models.Categories)},
				"status":           bson.M{"enum": enum(models.Statuses)},
				"creator":          identitySchema(),
				"interested_users": bson.M{"bsonType": "array", "items": interest},
				"created_at":       bson.M{"bsonType": "date"},
				"updated_at":       bson.M{"bsonType": "date"},
			},
		},
	}
}

func messagesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "text", "is_filtered", "sender", "timestamp"},
			"properties": bson.M{
				"kind":          bson.M{"enum": bson.A{models.MessageBroadcast, models.MessageDirect}},
				"text":          bson.M{"bsonType": "string"},
				"is_filtered":   bson.M{"bsonType": "bool"},
				"original_text": bson.M{"bsonType": "string"},
				"sender":        identitySchema(),
				"recipient":     identitySchema(),
				"timestamp":     bson.M{"bsonType": "date"},
			},
		},
	}
}

func feedbackSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"author", "issue_text", "improvement_text", "submitted_at"},
			"properties": bson.M{
				"author":           identitySchema(),
				"issue_text":       bson.M{"bsonType": "string", "minLength": 1},
				"improvement_text": bson.M{"bsonType": "string", "minLength": 1},
				"submitted_at":     bson.M{"bsonType": "date"},
			},
		},
	}
}
