package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window counter per key. Keys are typically client
// addresses; stale windows are pruned on access.
type Limiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	window  time.Duration
	maxHits int
	now     func() time.Time
}

func NewLimiter(window time.Duration, maxHits int) *Limiter {
	return &Limiter{
		hits:    make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it stays within the
// window's budget.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	valid := l.hits[key][:0]
	for _, hit := range l.hits[key] {
		if hit.After(windowStart) {
			valid = append(valid, hit)
		}
	}

	if len(valid) >= l.maxHits {
		l.hits[key] = valid
		return false
	}

	l.hits[key] = append(valid, now)
	return true
}

// Reset forgets all recorded hits.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits = make(map[string][]time.Time)
}
