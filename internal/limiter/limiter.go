// Package limiter implements a sliding-window rate limiter keyed by an
// arbitrary identifier string, commonly client IP plus action name.
package limiter

import (
	"sync"
	"time"
)

// SlidingWindow counts events inside a trailing time span per identifier.
// Each check prunes expired timestamps before counting, so a window never
// grows beyond its limit. Safe for concurrent use.
type SlidingWindow struct {
	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time
}

func New() *SlidingWindow {
	return &SlidingWindow{
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether another event for identifier fits inside the window.
// A rejected call is not recorded, so probing while limited does not extend
// the limited period.
func (l *SlidingWindow) Allow(identifier string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.events[identifier][:0]
	for _, ts := range l.events[identifier] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		l.events[identifier] = kept
		return false
	}

	l.events[identifier] = append(kept, now)
	return true
}

// Reset drops all recorded events for identifier.
func (l *SlidingWindow) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.events, identifier)
}
