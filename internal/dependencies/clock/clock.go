package clock

import "time"

// Clock abstracts time so cache staleness and polling can be driven by tests
type Clock interface {
	Now() time.Time

	// After returns a channel that receives the time once d has elapsed
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// After waits for d on the system clock
func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
