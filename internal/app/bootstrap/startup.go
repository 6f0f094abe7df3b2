// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	feedbackstore "github.com/dalemusser/campusconnect/internal/app/store/feedback"
	messagestore "github.com/dalemusser/campusconnect/internal/app/store/messages"
	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	userstore "github.com/dalemusser/campusconnect/internal/app/store/users"
	"github.com/dalemusser/campusconnect/internal/app/system/stats"
	"github.com/dalemusser/campusconnect/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// statsRefresher is started in Startup and stopped in Shutdown.
var statsRefresher *workers.StatsRefresher

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It starts
// the worker that keeps the aggregate gauges on /metrics current.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	statsRefresher = workers.NewStatsRefresher(newCollector(deps.MongoDatabase), logger, appCfg.StatsRefreshInterval)
	statsRefresher.Start()
	return nil
}

func newCollector(db *mongo.Database) *stats.Collector {
	return &stats.Collector{
		Requests: requeststore.New(db),
		Users:    userstore.New(db),
		Messages: messagestore.New(db),
		Feedback: feedbackstore.New(db),
	}
}
