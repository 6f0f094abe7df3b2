package indexes_test

import (
	"testing"

	"github.com/dalemusser/campusconnect/internal/app/system/indexes"
	"github.com/dalemusser/campusconnect/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":    {"uniq_users_external_id", "uniq_users_email"},
		"requests": {"idx_requests_created", "idx_requests_interested_created"},
		"messages": {"idx_messages_direct_pair_ts"},
		"feedback": {"idx_feedback_submitted"},
	}
	for coll, names := range want {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("list %s indexes: %v", coll, err)
		}
		have := map[string]bool{}
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err == nil {
				have[idx["name"].(string)] = true
			}
		}
		cur.Close(ctx)
		for _, n := range names {
			if !have[n] {
				t.Errorf("%s: missing index %s (have %v)", coll, n, have)
			}
		}
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("feedback").Indexes().CreateOne(ctx, mongoIndex("old_name"))
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	specs, err := db.Collection("feedback").Indexes().ListSpecifications(ctx)
	if err != nil {
		t.Fatalf("list specs: %v", err)
	}
	for _, s := range specs {
		if s.Name == "old_name" {
			t.Errorf("misnamed index was not replaced")
		}
	}
}

func mongoIndex(name string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName(name),
	}
}
