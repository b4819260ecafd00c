package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/loginpage/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// After fires immediately and advances the clock, so simulated delays
// cost no wall time.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	waited      []time.Duration
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// After advances the clock by d and returns a channel that is already ready
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	c.waited = append(c.waited, d)
	now := c.currentTime
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Waited returns every duration passed to After, in order
func (c *MockClock) Waited() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waited...)
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}
