package mocks

import (
	"github.com/comus-party/justeprix/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// Results is a queue of values to return from Int63n
	Results []int64
	index   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Int63n returns the next queued result, or 0 if none remaining
func (r *MockRandom) Int63n(n int64) int64 {
	if r.index >= len(r.Results) {
		return 0
	}
	result := r.Results[r.index]
	r.index++
	return result
}

// Queue adds values to the result queue
func (r *MockRandom) Queue(values ...int64) {
	r.Results = append(r.Results, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.Results = nil
	r.index = 0
}
