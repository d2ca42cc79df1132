package scheduler

import (
	"sync"
	"time"
)

// runGuard is the in-process mutual-exclusion token for sweeps. The cron
// trigger aims for once per minute but guarantees nothing; without the guard
// a slow provider could stack concurrent sweeps. The token expires so a
// sweep that never released (crashed goroutine, stuck I/O past the TTL)
// cannot wedge scheduling forever.
type runGuard struct {
	mu        sync.Mutex
	held      bool
	heldUntil time.Time
}

// tryAcquire takes the token if it is free or expired.
func (g *runGuard) tryAcquire(now time.Time, ttl time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held && now.Before(g.heldUntil) {
		return false
	}
	g.held = true
	g.heldUntil = now.Add(ttl)
	return true
}

// release frees the token.
func (g *runGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}
