package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixed struct {
	n   int64
	err error
}

func (f fixed) Count(context.Context) (int64, error) { return f.n, f.err }

type fixedRequests struct {
	fixed
	by map[string]int64
}

func (f fixedRequests) CountByStatus(context.Context) (map[string]int64, error) { return f.by, f.err }

func TestCollect(t *testing.T) {
	c := &Collector{
		Requests: fixedRequests{by: map[string]int64{"open": 3, "completed": 2, "paused": 0}},
		Users:    fixed{n: 7},
		Messages: fixed{n: 40},
		Feedback: fixed{n: 1},
	}
	s, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if s.Requests != 5 || s.Users != 7 || s.Messages != 40 || s.Feedback != 1 {
		t.Errorf("unexpected snapshot %+v", s)
	}

	Publish(s)
	if got := testutil.ToFloat64(metrics.RequestsByStatus.WithLabelValues("open")); got != 3 {
		t.Errorf("open gauge = %v", got)
	}
	if got := testutil.ToFloat64(metrics.UsersTotal); got != 7 {
		t.Errorf("users gauge = %v", got)
	}
}

func TestCollect_Error(t *testing.T) {
	c := &Collector{
		Requests: fixedRequests{by: map[string]int64{}},
		Users:    fixed{err: errors.New("down")},
		Messages: fixed{},
		Feedback: fixed{},
	}
	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
