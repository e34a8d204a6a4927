package mocks

import (
	"sync"

	"github.com/mcoot/battleship-client/internal/dependencies/random"
)

// MockRandom is a scripted Random for testing. Intn replays queued values
// (clamped into range) and Shuffle leaves the order unchanged.
type MockRandom struct {
	mu       sync.Mutex
	results  []int
	index    int
	shuffles int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result modulo n, or 0 if none remain
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || r.index >= len(r.results) {
		return 0
	}
	result := r.results[r.index]
	r.index++
	return result % n
}

// Shuffle records the call and keeps the original order
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shuffles++
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, values...)
}

// Remaining returns how many queued Intn values have not been consumed
func (r *MockRandom) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results) - r.index
}

// Shuffles returns how many times Shuffle was called
func (r *MockRandom) Shuffles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shuffles
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = nil
	r.index = 0
	r.shuffles = 0
}
