package random

import "math/rand/v2"

// Random provides the randomness used to pick ship placements and targets
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Shuffle pseudo-randomizes the order of n elements using swap
	Shuffle(n int, swap func(i, j int))
}

// SystemRandom implements Random using the runtime-seeded math/rand/v2 source
type SystemRandom struct{}

// New creates a new SystemRandom
func New() *SystemRandom {
	return &SystemRandom{}
}

// Intn returns a random int in [0, n), or 0 when n is not positive
func (r *SystemRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// Shuffle randomizes element order
func (r *SystemRandom) Shuffle(n int, swap func(i, j int)) {
	if n <= 1 {
		return
	}
	rand.Shuffle(n, swap)
}
