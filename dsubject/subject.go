package dsubject

import (
	"context"
	"slices"
	"sync"

	"github.com/gordian-engine/dstream"
)

// Subject forwards each notification it observes
// to every subscriber present at that time.
//
// Subscribers added after the Subject terminated
// receive the terminal notification immediately.
//
// The zero value is not usable; create one with [NewSubject].
type Subject[T any] struct {
	mu sync.Mutex

	subs []*subscriber[T]

	done bool
	err  error
}

type subscriber[T any] struct {
	o    dstream.Observer[T]
	stop func() bool
}

// NewSubject returns a Subject with no subscribers.
func NewSubject[T any]() *Subject[T] {
	return new(Subject[T])
}

// Subscribe adds o to the set of subscribers until ctx is cancelled.
func (s *Subject[T]) Subscribe(ctx context.Context, o dstream.Observer[T]) {
	o = dstream.Guard(ctx, o)

	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()

		if err != nil {
			o.OnError(err)
		} else {
			o.OnComplete()
		}
		return
	}

	sub := &subscriber[T]{o: o}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.remove(sub) })

	s.mu.Lock()
	sub.stop = stop
	s.mu.Unlock()
}

func (s *Subject[T]) remove(sub *subscriber[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.subs, sub); i >= 0 {
		s.subs = slices.Delete(s.subs, i, i+1)
	}
}

// OnNext forwards v to every current subscriber.
// It is a no-op once the Subject has terminated.
func (s *Subject[T]) OnNext(v T) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.o.OnNext(v)
	}
}

// OnError terminates the Subject and every current subscriber with err.
func (s *Subject[T]) OnError(err error) {
	subs, ok := s.terminate(err)
	if !ok {
		return
	}

	for _, sub := range subs {
		sub.o.OnError(err)
	}
}

// OnComplete terminates the Subject and completes every current subscriber.
func (s *Subject[T]) OnComplete() {
	subs, ok := s.terminate(nil)
	if !ok {
		return
	}

	for _, sub := range subs {
		sub.o.OnComplete()
	}
}

func (s *Subject[T]) terminate(err error) ([]*subscriber[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil, false
	}

	s.done = true
	s.err = err

	subs := s.subs
	s.subs = nil

	for _, sub := range subs {
		if sub.stop != nil {
			sub.stop()
		}
	}

	return subs, true
}

// Len reports the number of current subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
