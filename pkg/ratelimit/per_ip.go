// Package ratelimit provides per-client-IP request rate limiting.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Default per-IP limiter values.
const (
	DefaultBurstFactor     = 2
	DefaultCleanupInterval = 1 * time.Minute
	DefaultEntryTTL        = 1 * time.Minute
)

// PerIPConfig configures a PerIPLimiter.
type PerIPConfig struct {
	Rate            float64       // requests per second
	Burst           int           // maximum burst; Rate*2 when not positive
	CleanupInterval time.Duration // how often stale entries are cleaned up
	EntryTTL        time.Duration // how long an entry lives without activity
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// PerIPLimiter keeps one token bucket per client IP.
type PerIPLimiter struct {
	limit           rate.Limit
	burst           int
	entries         sync.Map // ip -> *ipEntry
	cleanupInterval time.Duration
	entryTTL        time.Duration
	stopCh          chan struct{}
	stoppedCh       chan struct{}
	stopOnce        sync.Once
}

// NewPerIPLimiter creates a limiter and starts its cleanup goroutine.
// It returns nil when cfg.Rate is not positive, which Middleware treats as
// "no limit".
func NewPerIPLimiter(cfg PerIPConfig) *PerIPLimiter {
	if cfg.Rate <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.Rate * DefaultBurstFactor)
		if burst < 1 {
			burst = 1
		}
	}
	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	entryTTL := cfg.EntryTTL
	if entryTTL <= 0 {
		entryTTL = DefaultEntryTTL
	}

	rl := &PerIPLimiter{
		limit:           rate.Limit(cfg.Rate),
		burst:           burst,
		cleanupInterval: cleanupInterval,
		entryTTL:        entryTTL,
		stopCh:          make(chan struct{}),
		stoppedCh:       make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Burst returns the maximum burst size.
func (rl *PerIPLimiter) Burst() int {
	return rl.burst
}

// Allow reports whether a request from ip may proceed, and how many
// requests remain in its burst.
func (rl *PerIPLimiter) Allow(ip string) (allowed bool, remaining int) {
	lim := rl.limiterFor(ip)
	allowed = lim.Allow()
	remaining = int(lim.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// RetryAfter is the whole number of seconds until one request is allowed
// again, never less than one.
func (rl *PerIPLimiter) RetryAfter() int64 {
	secs := int64(1 / float64(rl.limit))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (rl *PerIPLimiter) limiterFor(ip string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := rl.entries.Load(ip); ok {
		e := v.(*ipEntry)
		e.lastSeen.Store(now)
		return e.limiter
	}
	e := &ipEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	e.lastSeen.Store(now)
	actual, _ := rl.entries.LoadOrStore(ip, e)
	return actual.(*ipEntry).limiter
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (rl *PerIPLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
	<-rl.stoppedCh
}

func (rl *PerIPLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()
	defer close(rl.stoppedCh)

	for {
		select {
		case <-ticker.C:
			rl.removeStaleEntries(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PerIPLimiter) removeStaleEntries(now time.Time) {
	cutoff := now.Add(-rl.entryTTL).UnixNano()
	rl.entries.Range(func(key, value any) bool {
		if value.(*ipEntry).lastSeen.Load() < cutoff {
			rl.entries.Delete(key)
		}
		return true
	})
}

// ClientIP returns the IP part of r.RemoteAddr. Proxy headers are not
// consulted since they are client-controlled.
func ClientIP(r *http.Request) string {
	return extractRemoteIP(r.RemoteAddr)
}

// extractRemoteIP strips the port from remoteAddr if present.
func extractRemoteIP(remoteAddr string) string {
	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return ip
}
