// Package cell provides an observable value box, the shallow reactive
// container that views read loader state from.
//
// A Cell is safe for concurrent use. Watchers receive a coalesced signal on a
// buffered channel after every Set; they never block the writer.
package cell

import (
	"sync"

	"go.uber.org/atomic"
)

// Cell holds a value of type T. The zero value is not usable, use New.
type Cell[T any] struct {
	v       atomic.Pointer[T]
	version atomic.Uint64

	mu       sync.Mutex
	watchers map[uint64]chan struct{}
	nextID   uint64
}

// New creates a cell holding initial.
func New[T any](initial T) *Cell[T] {
	c := &Cell[T]{watchers: make(map[uint64]chan struct{})}
	c.v.Store(&initial)
	return c
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	p := c.v.Load()
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Set replaces the value and notifies watchers. Values are not compared,
// every Set counts as a change.
func (c *Cell[T]) Set(v T) {
	c.v.Store(&v)
	c.version.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Version counts the Set calls so far.
func (c *Cell[T]) Version() uint64 {
	return c.version.Load()
}

// Watch returns a channel signalled after each Set and a function that stops
// the subscription. Signals coalesce: a slow reader sees one pending signal
// for any number of writes.
func (c *Cell[T]) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
}
