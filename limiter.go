package rishiwrites

import (
	"sync"
	"time"
)

// ToggleLimiter rate-limits theme toggles per IP address with a sliding
// window. A background goroutine drops idle addresses until Stop.
type ToggleLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewToggleLimiter creates a ToggleLimiter that allows max hits per window.
// A max of zero disables limiting.
func NewToggleLimiter(max int, window time.Duration) *ToggleLimiter {
	if window <= 0 {
		window = time.Minute
	}
	l := &ToggleLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		stop:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *ToggleLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.prune(time.Now().Add(-l.window))
		}
	}
}

func (l *ToggleLimiter) prune(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, hits := range l.attempts {
		kept := keepAfter(hits, cutoff)
		if len(kept) == 0 {
			delete(l.attempts, ip)
		} else {
			l.attempts[ip] = kept
		}
	}
}

func keepAfter(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Allow reports whether ip is under the limit and records the hit if so.
func (l *ToggleLimiter) Allow(ip string) bool {
	if l.max <= 0 {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := keepAfter(l.attempts[ip], now.Add(-l.window))
	if len(kept) >= l.max {
		l.attempts[ip] = kept
		return false
	}
	l.attempts[ip] = append(kept, now)
	return true
}

// Tracked returns the number of addresses with hits in memory.
func (l *ToggleLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *ToggleLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
