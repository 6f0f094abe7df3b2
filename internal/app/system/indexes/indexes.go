// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// collectionIndexes is the desired index set for one collection.
type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func desired() []collectionIndexes {
	return []collectionIndexes{
		{"users", []mongo.IndexModel{
			{Keys: bson.D{{Key: "external_id", Value: 1}}, Options: options.Index().SetName("uniq_users_external_id").SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_users_email").SetUnique(true)},
			{Keys: bson.D{{Key: "display_name_ci", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("idx_users_name_id")},
		}},
		{"requests", []mongo.IndexModel{
			// default browse order: newest first, _id as tie-breaker
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("idx_requests_created")},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("idx_requests_category_created")},
			{Keys: bson.D{{Key: "creator.external_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_requests_creator_created")},
			{Keys: bson.D{{Key: "interested_users.external_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_requests_interested_created")},
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("idx_requests_status")},
		}},
		{"messages", []mongo.IndexModel{
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("idx_messages_kind_ts")},
			{Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "sender.external_id", Value: 1},
				{Key: "recipient.external_id", Value: 1},
				{Key: "timestamp", Value: 1},
			}, Options: options.Index().SetName("idx_messages_direct_pair_ts")},
		}},
		{"feedback", []mongo.IndexModel{
			{Keys: bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("idx_feedback_submitted")},
		}},
		{"audit_events", []mongo.IndexModel{
			{Keys: bson.D{{Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_ts")},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_category_type_ts")},
			{Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_request_ts")},
			{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_actor_ts")},
		}},
	}
}

/*
EnsureAll is called at startup. Reconciliation is idempotent and errors are
aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string
	for _, ci := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(ci.collection), ci.models, logger); err != nil {
			problems = append(problems, ci.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

// Mongo/DocDB return IndexOptionsConflict when the same keys already exist
// under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			logger.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// ensureIndexSet reconciles one collection: matching indexes are reused,
// indexes whose name or uniqueness differs are dropped and recreated, and
// missing indexes are created.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string
	existing := listExisting(ctx, coll, logger)

	for _, m := range models {
		name := *m.Options.Name
		unique := boolVal(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
		}

		ex, found := existing[sig]
		if found && ex.Name == name && boolVal(ex.Unique) == unique {
			logger.Debug("reusing existing index", fields...)
			continue
		}
		if found {
			logger.Info("realigning index",
				append(fields, zap.String("existing_name", ex.Name), zap.Bool("existing_unique", boolVal(ex.Unique)))...)
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
		}

		_, err := coll.Indexes().CreateOne(ctx, m)
		if isOptionsConflictErr(err) {
			// Raced with another instance or a stale listing; refresh and retry once.
			if again, ok := listExisting(ctx, coll, logger)[sig]; ok {
				if again.Name == name && boolVal(again.Unique) == unique {
					continue
				}
				if _, dropErr := coll.Indexes().DropOne(ctx, again.Name); dropErr != nil {
					logger.Warn("failed to drop conflicting index", append(fields, zap.Error(dropErr))...)
				}
			}
			_, err = coll.Indexes().CreateOne(ctx, m)
		}
		if err != nil {
			logger.Warn("index ensure failed", append(fields, zap.Error(err))...)
			if unique && wafflemongo.IsDup(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present on %s)", name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		logger.Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
