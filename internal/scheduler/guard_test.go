package scheduler

import (
	"testing"
	"time"
)

func TestRunGuard(t *testing.T) {
	var g runGuard
	now := time.Date(2025, time.May, 5, 7, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute

	if !g.tryAcquire(now, ttl) {
		t.Fatal("first acquire should succeed")
	}
	if g.tryAcquire(now.Add(time.Minute), ttl) {
		t.Fatal("second acquire while held and unexpired should fail")
	}

	// Expired token is reclaimable even without a release.
	if !g.tryAcquire(now.Add(ttl+time.Second), ttl) {
		t.Fatal("expired token should be reclaimable")
	}

	g.release()
	if !g.tryAcquire(now.Add(ttl+2*time.Second), ttl) {
		t.Fatal("acquire after release should succeed")
	}
}
