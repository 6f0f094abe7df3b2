package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnvMongoURI points tests at an existing MongoDB instead of a container.
const EnvMongoURI = "CAMPUSCONNECT_TEST_MONGO_URI"

var (
	mongoOnce sync.Once
	mongoURI  string
	mongoErr  error
)

// sharedURI starts one MongoDB container per test binary, unless
// EnvMongoURI is set. The container is reaped by testcontainers.
func sharedURI() (string, error) {
	mongoOnce.Do(func() {
		if uri := os.Getenv(EnvMongoURI); uri != "" {
			mongoURI = uri
			return
		}
		defer func() {
			if r := recover(); r != nil {
				mongoErr = fmt.Errorf("docker unavailable: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		container, err := mongodb.Run(ctx, "mongo:7")
		if err != nil {
			mongoErr = err
			return
		}
		mongoURI, mongoErr = container.ConnectionString(ctx)
	})
	return mongoURI, mongoErr
}

// SetupTestDB returns a fresh database that is dropped when the test ends.
// The test is skipped when no MongoDB is reachable, and in -short mode.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in short mode")
	}

	uri, err := sharedURI()
	if err != nil {
		t.Skipf("skipping MongoDB test: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("skipping MongoDB test: connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("skipping MongoDB test: ping: %v", err)
	}

	db := client.Database("cc_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// TestContext returns a context suitable for a single test's DB calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
