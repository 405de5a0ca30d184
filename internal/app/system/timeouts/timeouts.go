// Package timeouts bounds the portal's own MongoDB work: audit writes,
// audit index setup and the health ping. Backend REST calls carry their own
// client timeout and do not use these values.
//
//   - Ping: health endpoint connectivity check
//   - Short: one audit event write
//   - Medium: audit index creation and audit queries
//   - Long: MongoDB connect at startup
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds one value per timeout class. Zero values are ignored by
// Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func Ping() time.Duration   { return Current().Ping }
func Short() time.Duration  { return Current().Short }
func Medium() time.Duration { return Current().Medium }
func Long() time.Duration   { return Current().Long }

// Current returns a copy of the active values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur.Ping, cfg.Ping)
	merge(&cur.Short, cfg.Short)
	merge(&cur.Medium, cfg.Medium)
	merge(&cur.Long, cfg.Long)
}

func merge(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv applies HRPORTAL_TIMEOUT_PING, _SHORT, _MEDIUM and _LONG
// (Go durations such as "500ms" or "20s"). Unset, unparsable and
// non-positive values are skipped. It returns how many were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	vars := []struct {
		name string
		dst  *time.Duration
	}{
		{"HRPORTAL_TIMEOUT_PING", &cur.Ping},
		{"HRPORTAL_TIMEOUT_SHORT", &cur.Short},
		{"HRPORTAL_TIMEOUT_MEDIUM", &cur.Medium},
		{"HRPORTAL_TIMEOUT_LONG", &cur.Long},
	}
	applied := 0
	for _, v := range vars {
		d, err := time.ParseDuration(os.Getenv(v.name))
		if err != nil || d <= 0 {
			continue
		}
		*v.dst = d
		applied++
	}
	return applied
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning, tagged
// with operation, when the deadline was what ended the context.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
