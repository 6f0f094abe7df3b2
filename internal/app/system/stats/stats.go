// Package stats collects the aggregate counts shown on the admin dashboard
// and exported as gauges.
package stats

import (
	"context"

	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
)

// Counter counts documents in one collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// RequestCounter also breaks requests down by status.
type RequestCounter interface {
	Counter
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Snapshot is one set of counts.
type Snapshot struct {
	Requests         int64            `json:"requests"`
	RequestsByStatus map[string]int64 `json:"requests_by_status"`
	Users            int64            `json:"users"`
	Messages         int64            `json:"messages"`
	Feedback         int64            `json:"feedback"`
}

// Collector gathers a Snapshot from the stores.
type Collector struct {
	Requests RequestCounter
	Users    Counter
	Messages Counter
	Feedback Counter
}

// Collect reads every count. The first error aborts.
func (c *Collector) Collect(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	var err error
	if s.RequestsByStatus, err = c.Requests.CountByStatus(ctx); err != nil {
		return Snapshot{}, err
	}
	for _, n := range s.RequestsByStatus {
		s.Requests += n
	}
	if s.Users, err = c.Users.Count(ctx); err != nil {
		return Snapshot{}, err
	}
	if s.Messages, err = c.Messages.Count(ctx); err != nil {
		return Snapshot{}, err
	}
	if s.Feedback, err = c.Feedback.Count(ctx); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Publish copies a snapshot into the Prometheus gauges.
func Publish(s Snapshot) {
	for status, n := range s.RequestsByStatus {
		metrics.RequestsByStatus.WithLabelValues(status).Set(float64(n))
	}
	metrics.UsersTotal.Set(float64(s.Users))
	metrics.MessagesTotal.Set(float64(s.Messages))
}
