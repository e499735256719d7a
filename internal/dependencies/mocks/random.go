package mocks

import (
	"fmt"
	"sync"

	"github.com/demesup/awale/internal/dependencies/random"
)

// MockRandom returns queued values. Session goroutines share it, so access
// is serialized.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	intnIndex   int

	idResults []string
	idIndex   int
	idCounter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.intnResults) {
		return 0
	}
	result := r.intnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// NewID returns the next queued ID, or a sequential "id-N" when none remain
func (r *MockRandom) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idIndex < len(r.idResults) {
		result := r.idResults[r.idIndex]
		r.idIndex++
		return result
	}
	r.idCounter++
	return fmt.Sprintf("id-%d", r.idCounter)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	r.intnResults = append(r.intnResults, values...)
	r.mu.Unlock()
}

// QueueID adds values to the NewID result queue
func (r *MockRandom) QueueID(values ...string) {
	r.mu.Lock()
	r.idResults = append(r.idResults, values...)
	r.mu.Unlock()
}
