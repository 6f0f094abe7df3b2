// internal/app/system/workers/statsrefresh.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/stats"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Collector produces a stats snapshot.
type Collector interface {
	Collect(ctx context.Context) (stats.Snapshot, error)
}

// StatsRefresher periodically recomputes aggregate counts and publishes
// them as gauges.
type StatsRefresher struct {
	collector Collector
	publish   func(stats.Snapshot)
	log       *zap.Logger
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup

	mu   sync.RWMutex
	last stats.Snapshot
	at   time.Time
}

// NewStatsRefresher creates the worker. It publishes to the Prometheus
// gauges via stats.Publish.
func NewStatsRefresher(c Collector, logger *zap.Logger, interval time.Duration) *StatsRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsRefresher{
		collector: c,
		publish:   stats.Publish,
		log:       logger,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start refreshes once immediately, then on every tick.
func (w *StatsRefresher) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("stats refresher started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *StatsRefresher) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("stats refresher stopped")
}

// Last returns the most recent snapshot and when it was taken.
func (w *StatsRefresher) Last() (stats.Snapshot, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last, w.at
}

func (w *StatsRefresher) run() {
	defer w.wg.Done()

	w.refresh()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

func (w *StatsRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	snap, err := w.collector.Collect(ctx)
	if err != nil {
		w.log.Error("failed to refresh stats", zap.Error(err))
		return
	}
	w.publish(snap)

	w.mu.Lock()
	w.last, w.at = snap, time.Now()
	w.mu.Unlock()

	w.log.Debug("stats refreshed",
		zap.Int64("requests", snap.Requests),
		zap.Int64("users", snap.Users),
		zap.Int64("messages", snap.Messages))
}
