// Package dbuffer contains fixed-capacity buffers.
package dbuffer

import (
	"fmt"
	"iter"
)

// Evicting is a fixed-capacity FIFO.
// Pushing onto a full Evicting silently drops its oldest value.
//
// Evicting is not safe for concurrent use.
type Evicting[T any] struct {
	vals []T

	// Index of the oldest value in vals.
	head int

	n int
}

// NewEvicting returns an empty Evicting holding at most capacity values.
// NewEvicting panics if capacity is less than 1.
func NewEvicting[T any](capacity int) *Evicting[T] {
	if capacity < 1 {
		panic(fmt.Errorf("BUG: evicting buffer capacity must be at least 1 (got %d)", capacity))
	}

	return &Evicting[T]{
		vals: make([]T, capacity),
	}
}

// Push appends v.
// If the buffer was already full, the oldest value is dropped
// and returned with ok set to true.
func (b *Evicting[T]) Push(v T) (evicted T, ok bool) {
	c := len(b.vals)

	if b.n < c {
		b.vals[(b.head+b.n)%c] = v
		b.n++
		return evicted, false
	}

	evicted = b.vals[b.head]
	b.vals[b.head] = v
	b.head = (b.head + 1) % c
	return evicted, true
}

// Len reports the number of values currently held.
func (b *Evicting[T]) Len() int { return b.n }

// Cap reports the capacity given to [NewEvicting].
func (b *Evicting[T]) Cap() int { return len(b.vals) }

// Clear drops every held value.
func (b *Evicting[T]) Clear() {
	clear(b.vals)
	b.head = 0
	b.n = 0
}

// All yields every held value, oldest first.
//
// The buffer must not be modified during iteration.
func (b *Evicting[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		c := len(b.vals)
		for i := range b.n {
			if !yield(b.vals[(b.head+i)%c]) {
				return
			}
		}
	}
}

// Filter yields, oldest first, the held values for which keep returns true.
// It is a view over the buffer, not a copy,
// and it never modifies the buffer.
//
// The buffer must not be modified during iteration.
func (b *Evicting[T]) Filter(keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range b.All() {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}
