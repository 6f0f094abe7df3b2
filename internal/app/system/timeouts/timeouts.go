// Package timeouts provides the timeout values handlers and stores use with
// context.WithTimeout.
//
//   - Ping: health checks
//   - Short: single-document reads and conditional updates
//   - Medium: list queries and creates
//   - Long: aggregate counts and admin listings
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var (
	mu     sync.RWMutex
	values = defaults()
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(values)
}

// Ping returns the health-check timeout.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for single-document operations.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the timeout for list queries and inserts.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the timeout for aggregations and admin listings.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Configure overrides the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&values, cfg)
}

func merge(dst *Config, src Config) int {
	n := 0
	for _, f := range []struct {
		dst *time.Duration
		src time.Duration
	}{
		{&dst.Ping, src.Ping},
		{&dst.Short, src.Short},
		{&dst.Medium, src.Medium},
		{&dst.Long, src.Long},
	} {
		if f.src > 0 {
			*f.dst = f.src
			n++
		}
	}
	return n
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	values = defaults()
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM and
// TIMEOUT_LONG (Go duration strings). Unset or invalid values are skipped.
// It returns how many values were applied.
func ConfigureFromEnv() int {
	parse := func(key string) time.Duration {
		d, err := time.ParseDuration(os.Getenv(key))
		if err != nil || d <= 0 {
			return 0
		}
		return d
	}
	cfg := Config{
		Ping:   parse("TIMEOUT_PING"),
		Short:  parse("TIMEOUT_SHORT"),
		Medium: parse("TIMEOUT_MEDIUM"),
		Long:   parse("TIMEOUT_LONG"),
	}
	mu.Lock()
	defer mu.Unlock()
	return merge(&values, cfg)
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return values
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
