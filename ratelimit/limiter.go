// Package ratelimit implements a per-account sliding window limiter.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Limiter allows at most calls requests per period for each account.
// Only admitted calls are recorded.
type Limiter struct {
	calls  int
	period time.Duration
	clock  clockwork.Clock

	mu       sync.Mutex
	requests map[string][]time.Time
}

// New creates a limiter using the real clock
func New(calls int, period time.Duration) *Limiter {
	return NewWithClock(calls, period, clockwork.NewRealClock())
}

// NewWithClock creates a limiter reading time from clock
func NewWithClock(calls int, period time.Duration, clock clockwork.Clock) *Limiter {
	return &Limiter{
		calls:    calls,
		period:   period,
		clock:    clock,
		requests: make(map[string][]time.Time),
	}
}

// Check admits or rejects a call. A rejected call gets the whole seconds
// until the oldest recorded call leaves the window.
func (l *Limiter) Check(accountID string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	recent := l.evict(accountID, now)

	if len(recent) >= l.calls {
		return false, l.cooldown(recent, now)
	}

	l.requests[accountID] = append(recent, now)
	return true, 0
}

// Allow is Check without the cooldown
func (l *Limiter) Allow(accountID string) bool {
	ok, _ := l.Check(accountID)
	return ok
}

// Cooldown returns seconds until the account may call again, 0 if it may
// call now
func (l *Limiter) Cooldown(accountID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	recent := l.evict(accountID, now)
	if len(recent) < l.calls {
		return 0
	}
	return l.cooldown(recent, now)
}

// Cleanup drops accounts with no call inside the window and returns how many
// were dropped
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	removed := 0
	for accountID := range l.requests {
		if len(l.evict(accountID, now)) == 0 {
			removed++
		}
	}
	return removed
}

// Tracked returns how many accounts currently hold window state
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// evict drops timestamps outside the window; callers hold mu
func (l *Limiter) evict(accountID string, now time.Time) []time.Time {
	times, ok := l.requests[accountID]
	if !ok {
		return nil
	}

	cutoff := now.Add(-l.period)
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	recent := times[i:]
	if len(recent) == 0 {
		delete(l.requests, accountID)
		return nil
	}
	l.requests[accountID] = recent
	return recent
}

func (l *Limiter) cooldown(recent []time.Time, now time.Time) int {
	wait := recent[0].Add(l.period).Sub(now)
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
