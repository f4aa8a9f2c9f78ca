package dstream

import (
	"context"

	"go.uber.org/atomic"
)

// Guard wraps o so that it observes nothing after a terminal notification,
// and nothing after ctx is cancelled.
//
// Producers that cannot otherwise track whether they already terminated
// (for instance a multicaster replaying to an observer
// that may have been completed live) should deliver through a guard.
func Guard[T any](ctx context.Context, o Observer[T]) Observer[T] {
	if g, ok := o.(*guarded[T]); ok && g.ctx == ctx {
		return g
	}
	return &guarded[T]{ctx: ctx, o: o}
}

type guarded[T any] struct {
	ctx context.Context
	o   Observer[T]

	closed atomic.Bool
}

func (g *guarded[T]) OnNext(v T) {
	if g.closed.Load() || g.ctx.Err() != nil {
		return
	}
	g.o.OnNext(v)
}

func (g *guarded[T]) OnError(err error) {
	if g.ctx.Err() != nil || !g.closed.CompareAndSwap(false, true) {
		return
	}
	g.o.OnError(err)
}

func (g *guarded[T]) OnComplete() {
	if g.ctx.Err() != nil || !g.closed.CompareAndSwap(false, true) {
		return
	}
	g.o.OnComplete()
}

// Serialized returns an Observer that forwards to o through a [Serial],
// so that notifications arriving concurrently from several producers
// (for example a source and a stop signal)
// reach o one at a time and in arrival order.
func Serialized[T any](o Observer[T]) Observer[T] {
	return &serialized[T]{o: o}
}

type serialized[T any] struct {
	s Serial
	o Observer[T]
}

func (s *serialized[T]) OnNext(v T) {
	s.s.Do(func() { s.o.OnNext(v) })
}

func (s *serialized[T]) OnError(err error) {
	s.s.Do(func() { s.o.OnError(err) })
}

func (s *serialized[T]) OnComplete() {
	s.s.Do(s.o.OnComplete)
}
