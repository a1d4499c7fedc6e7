package remc

import (
	"math/rand"
	"time"
)

// RandomSource supplies the uniform draws the Monte Carlo engine consumes.
// Implementations do not need to be safe for concurrent use; the engine only
// draws while holding its exclusive lease on the particle store.
type RandomSource interface {
	// UniformUnit returns a draw in [0, 1).
	UniformUnit() float64

	// Intn returns a uniform draw in [0, n). Panics if n <= 0.
	Intn(n int) int
}

type mathRandSource struct {
	r *rand.Rand
}

// NewRandomSource returns a deterministic RandomSource seeded with seed.
// Identical seeds reproduce identical move sequences, which is what a
// coordinating rank relies on when replaying a run.
func NewRandomSource(seed int64) RandomSource {
	return &mathRandSource{r: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededSource returns a RandomSource seeded from the wall clock.
func NewTimeSeededSource() RandomSource {
	return NewRandomSource(time.Now().UnixNano())
}

func (s *mathRandSource) UniformUnit() float64 { return s.r.Float64() }

func (s *mathRandSource) Intn(n int) int { return s.r.Intn(n) }
