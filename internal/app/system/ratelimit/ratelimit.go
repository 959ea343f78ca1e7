// Package ratelimit throttles login attempts per client IP and per email.
package ratelimit

import (
	"context"
	"net"
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

// New creates a limiter that allows limit hits per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
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

// Remaining returns how many hits are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if rem := l.limit - w.count; rem > 0 {
		return rem
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

// ClientIP returns the first X-Forwarded-For address, then X-Real-IP, then
// the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginConfig sets the two login windows.
type LoginConfig struct {
	PerIP       int
	IPWindow    time.Duration
	PerEmail    int
	EmailWindow time.Duration
}

// DefaultLoginConfig allows 10 attempts per IP per minute and 5 per email
// per 5 minutes.
var DefaultLoginConfig = LoginConfig{
	PerIP:       10,
	IPWindow:    time.Minute,
	PerEmail:    5,
	EmailWindow: 5 * time.Minute,
}

// LoginLimiter applies an IP limit and an email limit to login attempts.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewLoginLimiter builds a LoginLimiter. Non-positive fields fall back to
// DefaultLoginConfig.
func NewLoginLimiter(cfg LoginConfig) *LoginLimiter {
	d := DefaultLoginConfig
	if cfg.PerIP <= 0 {
		cfg.PerIP = d.PerIP
	}
	if cfg.IPWindow <= 0 {
		cfg.IPWindow = d.IPWindow
	}
	if cfg.PerEmail <= 0 {
		cfg.PerEmail = d.PerEmail
	}
	if cfg.EmailWindow <= 0 {
		cfg.EmailWindow = d.EmailWindow
	}
	return &LoginLimiter{
		ip:    New(cfg.PerIP, cfg.IPWindow),
		email: New(cfg.PerEmail, cfg.EmailWindow),
	}
}

// Check records an attempt and reports whether it may proceed. When it
// may not, reason is the message for the client. A nil LoginLimiter allows
// everything.
func (ll *LoginLimiter) Check(r *http.Request, email string) (ok bool, reason string) {
	if ll == nil {
		return true, ""
	}
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := emailKey(email); key != "" && !ll.email.Allow(key) {
		return false, "Too many login attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// ResetEmail clears the email window after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if ll == nil {
		return
	}
	if key := emailKey(email); key != "" {
		ll.email.Reset(key)
	}
}

// Run sweeps both limiters every minute until ctx is done.
func (ll *LoginLimiter) Run(ctx context.Context) {
	go ll.ip.Run(ctx, time.Minute)
	ll.email.Run(ctx, time.Minute)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
