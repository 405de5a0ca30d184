// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter that allows limit hits per key within duration.
// Expired windows are swept in the background every 2*duration.
func New(limit int, duration time.Duration) *Limiter {
	l := newLimiter(limit, duration, time.Now)
	go l.sweepLoop(duration * 2)
	return l
}

func newLimiter(limit int, duration time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
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

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if left := l.limit - w.count; left > 0 {
		return left
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, key)
		}
	}
}

func (l *Limiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		l.sweep()
	}
}

// ClientIP returns the host part of RemoteAddr. Behind a proxy, mount
// TrustedProxies.RealIP first so RemoteAddr already holds the client.
func ClientIP(r *http.Request) string {
	return hostOf(r.RemoteAddr)
}

// LoginLimiter throttles sign-in attempts per client IP and per account
// identifier (username or email).
type LoginLimiter struct {
	ip      *Limiter
	account *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 attempts per
// identifier per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig creates a login limiter with custom limits.
func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, accountLimit int, accountWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ip:      New(ipLimit, ipWindow),
		account: New(accountLimit, accountWindow),
	}
}

// Check records an attempt and reports whether it may proceed. When it may
// not, the returned message is safe to show to the user.
func (ll *LoginLimiter) Check(r *http.Request, identifier string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if key := accountKey(identifier); key != "" && !ll.account.Allow(key) {
		return false, "Too many sign-in attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// Succeeded clears the per-account counter after a successful sign-in.
func (ll *LoginLimiter) Succeeded(identifier string) {
	if key := accountKey(identifier); key != "" {
		ll.account.Reset(key)
	}
}

func accountKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
