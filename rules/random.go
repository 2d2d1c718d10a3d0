package rules

import (
	"math/rand"
	"sync"
	"time"
)

// Random is the randomness source used by selection and summoning.
// Tests inject a deterministic implementation.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// lockedRandom makes a *rand.Rand safe to share between goroutines
type lockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a goroutine-safe seeded random source.
// A zero seed uses the current time.
func NewRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRandom{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
