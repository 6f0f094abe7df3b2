// Package ratelimit provides fixed-window rate limiting keyed by client IP.
// It guards the endpoints that reach an external quota (the moderation
// classifier) or enumerate the admin allowlist.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/respond"
	"go.uber.org/zap"
)

// Limiter counts requests per key within a fixed window.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time

	stop chan struct{}
	once sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a Limiter allowing limit requests per duration per key.
// A non-positive limit disables limiting. Call Stop to end the sweep loop.
func New(limit int, duration time.Duration) *Limiter {
	if duration <= 0 {
		duration = time.Minute
	}
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if limit > 0 {
		go l.sweepLoop(duration * 2)
	}
	return l
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests key may still make in its window.
func (l *Limiter) Remaining(key string) int {
	if l.limit <= 0 {
		return -1
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if r := l.limit - w.count; r > 0 {
		return r
	}
	return 0
}

// Stop ends the background sweep. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware rejects requests over the limit with 429 RateLimited.
// The key is the client IP; put chi's RealIP middleware in front when
// running behind a proxy.
func (l *Limiter) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !l.Allow(ip) {
				logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.Itoa(int(l.duration.Seconds())))
				respond.Error(w, logger, apperr.New(apperr.RateLimited, "too many requests, please slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
