package synth

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the source of randomness used by the synthesizer.
// *rand.Rand satisfies it.
type Rand interface {
	// Intn returns a value in [0, n)
	Intn(n int) int
}

// lockedRand serializes access to a *rand.Rand, which is not safe for concurrent use
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

// NewRand returns a goroutine-safe Rand. A zero seed uses the current time.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{src: rand.New(rand.NewSource(seed))}
}

// SequenceRand replays fixed draws, clamped to [0, n). Once the sequence is
// exhausted it keeps returning 0.
type SequenceRand struct {
	mu     sync.Mutex
	values []int
	pos    int
}

// NewSequenceRand creates a SequenceRand that replays values in order
func NewSequenceRand(values ...int) *SequenceRand {
	return &SequenceRand{values: values}
}

func (s *SequenceRand) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.values) {
		return 0
	}
	v := s.values[s.pos]
	s.pos++

	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
