package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key, e.g. per source host for alerts.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]*rate.Limiter)}
}

// Allow returns true if the event is allowed, false if rate limited.
func (l *Limiter) Allow(key string, rps float64, burst int, now time.Time) bool {
	if key == "" {
		return true
	}
	if rps <= 0 || burst <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Limit(rps), burst)
		l.buckets[key] = b
	}
	if b.Limit() != rate.Limit(rps) {
		b.SetLimitAt(now, rate.Limit(rps))
	}
	if b.Burst() != burst {
		b.SetBurstAt(now, burst)
	}

	return b.AllowN(now, 1)
}
