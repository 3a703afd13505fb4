package board

import (
	"sync"
	"time"
)

// DefaultRefreshInterval is the minimum spacing between manual
// refreshes.
const DefaultRefreshInterval = 60 * time.Second

// Gate rate-limits manual refresh requests to one per interval. The
// clock is injected so the guard is testable; state lives on the value
// rather than in a package variable and resets with the process.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewGate creates a gate on the wall clock.
func NewGate(interval time.Duration) *Gate {
	return NewGateWithClock(interval, time.Now)
}

// NewGateWithClock creates a gate with an explicit clock.
func NewGateWithClock(interval time.Duration, now func() time.Time) *Gate {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{interval: interval, now: now}
}

// Allow reports whether a manual refresh may run now, and if so,
// consumes the window. A simple timestamp compare; not a token bucket.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Remaining reports how long until the next manual refresh is allowed.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last.IsZero() {
		return 0
	}
	rem := g.interval - g.now().Sub(g.last)
	if rem < 0 {
		return 0
	}
	return rem
}
