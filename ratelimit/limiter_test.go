package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_SlidingWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(3, 10*time.Second, clock)

	for i := 0; i < 3; i++ {
		ok, cooldown := l.Check("alice")
		require.True(t, ok, "call %d", i)
		assert.Zero(t, cooldown)
		clock.Advance(time.Second)
	}

	ok, cooldown := l.Check("alice")
	assert.False(t, ok)
	// oldest call at t=0 leaves the window at t=10, now is t=3
	assert.Equal(t, 7, cooldown)
	assert.Equal(t, 7, l.Cooldown("alice"))

	clock.Advance(7 * time.Second)
	ok, _ = l.Check("alice")
	assert.True(t, ok)
}

func TestLimiter_RejectedCallsAreNotRecorded(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(1, 5*time.Second, clock)

	require.True(t, l.Allow("alice"))
	for i := 0; i < 10; i++ {
		assert.False(t, l.Allow("alice"))
		clock.Advance(400 * time.Millisecond)
	}

	// 4s elapsed; hammering must not push the window out
	clock.Advance(time.Second)
	assert.True(t, l.Allow("alice"))
}

func TestLimiter_CooldownRoundsUp(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(1, 2*time.Second, clock)

	require.True(t, l.Allow("alice"))
	clock.Advance(1500 * time.Millisecond)

	ok, cooldown := l.Check("alice")
	assert.False(t, ok)
	assert.Equal(t, 1, cooldown)
	assert.Zero(t, l.Cooldown("bob"))
}

func TestLimiter_AccountsAreIndependent(t *testing.T) {
	l := NewWithClock(1, time.Minute, clockwork.NewFakeClock())

	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"))
	assert.True(t, l.Allow("bob"))
}

func TestLimiter_Cleanup(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWithClock(5, 10*time.Second, clock)

	l.Allow("idle")
	clock.Advance(6 * time.Second)
	l.Allow("active")
	clock.Advance(5 * time.Second)

	assert.Equal(t, 2, l.Tracked())
	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 1, l.Tracked())
	assert.Zero(t, l.Cooldown("idle"))
}

func TestLimiter_ConcurrentChecksNeverExceedLimit(t *testing.T) {
	l := NewWithClock(10, time.Minute, clockwork.NewFakeClock())

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("alice") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), allowed.Load())
}
