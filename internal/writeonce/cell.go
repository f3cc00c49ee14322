// Package writeonce provides a storage cell that accepts exactly one
// successful Set per lifetime.
package writeonce

import (
	"sync"

	"github.com/reglet-dev/ukagaka-sdk/domain/errors"
)

// Cell holds a value that can be set once and read many times.
// Concurrent writers are safe: the first one wins and every later Set
// returns a *errors.ConflictError without touching the stored value.
type Cell[T any] struct {
	value T
	name  string
	mu    sync.RWMutex
	set   bool
}

// New creates an empty cell. The name identifies the cell in conflict errors.
func New[T any](name string) *Cell[T] {
	return &Cell[T]{name: name}
}

// Set stores v if the cell is empty.
func (c *Cell[T]) Set(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set {
		return &errors.ConflictError{Registry: c.name, Existing: c.value, Rejected: v}
	}
	c.value = v
	c.set = true
	return nil
}

// Get returns the stored value and whether one has been set.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.set
}

// IsSet reports whether the cell holds a value.
func (c *Cell[T]) IsSet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

// Name returns the cell name used in conflict errors.
func (c *Cell[T]) Name() string {
	return c.name
}
