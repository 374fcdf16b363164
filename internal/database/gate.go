package database

import (
	"fmt"

	"charla/server/internal/apperr"

	"golang.org/x/sync/semaphore"
)

// Gate admits a bounded number of concurrent operations.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
}

// NewGate creates a gate admitting at most capacity callers (minimum 1).
func NewGate(capacity int64) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{sem: semaphore.NewWeighted(capacity), capacity: capacity}
}

// Enter admits the caller or fails immediately with ErrResourceExhausted.
func (g *Gate) Enter() (func(), error) {
	if !g.sem.TryAcquire(1) {
		return nil, fmt.Errorf("%w: %d storage operations already in flight", apperr.ErrResourceExhausted, g.capacity)
	}
	return func() { g.sem.Release(1) }, nil
}
