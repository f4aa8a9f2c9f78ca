package dpubsub

import (
	"context"
	"errors"
	"sync"

	"github.com/gordian-engine/dstream"
)

// ErrNoValues is returned from [*Stream.Last]
// when the stream completed without publishing any value.
var ErrNoValues = errors.New("stream completed without values")

// Stream is a linked list of event-driven notifications.
// The list has a single writer and many readers.
// Readers can each consume the list at their own pace.
//
// Each node carries either a value (Val, with Next set)
// or the terminal notification (Done set, and Err set on failure).
//
// If readers do not actively consume the list,
// the node they observe will never be garbage collected,
// which is a memory leak.
type Stream[T any] struct {
	Ready chan struct{}
	Next  *Stream[T]
	Val   T

	Done bool
	Err  error
}

// NewStream returns an initialized pubsub stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{
		Ready: make(chan struct{}),
	}
}

// Publish assigns s's value and initializes s.Next.
// Then s.Ready is closed, notifying any observers that
// s.Val can now be safely read.
//
// If s was already published or finished, Publish panics.
func (s *Stream[T]) Publish(t T) {
	s.Val = t
	s.Next = NewStream[T]()
	close(s.Ready)
}

// Finish marks s as the terminal node, with err set if the stream failed,
// and closes s.Ready.
//
// If s was already published or finished, Finish panics.
func (s *Stream[T]) Finish(err error) {
	s.Done = true
	s.Err = err
	close(s.Ready)
}

// Subscribe subscribes to obs until ctx is cancelled,
// writing every notification into the returned Stream head.
func Subscribe[T any](ctx context.Context, obs dstream.Observable[T]) *Stream[T] {
	head := NewStream[T]()
	w := &streamWriter[T]{tail: head}
	obs.Subscribe(ctx, dstream.Guard(ctx, w))
	return head
}

// streamWriter is the single writer of a Stream.
// Notifications may arrive on different goroutines,
// so the tail pointer is guarded.
type streamWriter[T any] struct {
	mu   sync.Mutex
	tail *Stream[T]
}

func (w *streamWriter[T]) OnNext(v T) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tail.Publish(v)
	w.tail = w.tail.Next
}

func (w *streamWriter[T]) OnError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tail.Finish(err)
}

func (w *streamWriter[T]) OnComplete() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tail.Finish(nil)
}

// Collect reads from s until the terminal node,
// returning every value along with the stream's error, if any.
//
// If ctx is cancelled first, Collect returns the values read so far
// and the context's cause.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		select {
		case <-ctx.Done():
			return out, context.Cause(ctx)
		case <-s.Ready:
		}

		if s.Done {
			return out, s.Err
		}

		out = append(out, s.Val)
		s = s.Next
	}
}

// Last reads s to its end and returns the final value.
// It returns [ErrNoValues] if the stream completed empty.
func (s *Stream[T]) Last(ctx context.Context) (T, error) {
	var zero T

	vals, err := s.Collect(ctx)
	if err != nil {
		return zero, err
	}
	if len(vals) == 0 {
		return zero, ErrNoValues
	}

	return vals[len(vals)-1], nil
}
