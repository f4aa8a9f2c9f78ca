package dsubject

import "go.uber.org/atomic"

// TakeSubject is a [Subject] that completes itself, and all its subscribers,
// once it has forwarded a configured number of values.
type TakeSubject[T any] struct {
	*Subject[T]

	take  int64
	takes atomic.Int64
}

// NewTakeSubject returns a TakeSubject completing after n values.
// If n is less than 1, the TakeSubject completes after the first value.
func NewTakeSubject[T any](n int) *TakeSubject[T] {
	if n < 1 {
		n = 1
	}

	return &TakeSubject[T]{
		Subject: NewSubject[T](),
		take:    int64(n),
	}
}

// OnNext forwards v to every current subscriber.
// If v is the final value to take,
// the subject and its subscribers are then completed.
func (s *TakeSubject[T]) OnNext(v T) {
	n := s.takes.Inc()

	s.Subject.OnNext(v)

	if n == s.take {
		s.OnComplete()
	}
}

// Takes reports how many values have been observed,
// including any observed after completion.
func (s *TakeSubject[T]) Takes() int {
	return int(s.takes.Load())
}
